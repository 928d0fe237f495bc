package repository

import (
	"fmt"
	"strings"
	"time"

	"campusfinder/internal/domain/entity"
	"campusfinder/pkg/errors"
)

type imageRecord struct {
	URL string `firestore:"url" bson:"url" json:"url"`
}

// reportRecord is the stored layout shared by every backend. The contact
// union is flattened to contactMethod/contactInfo, with contactInfo null for
// in-app contact.
type reportRecord struct {
	Type          string        `firestore:"type" bson:"type" json:"type"`
	Category      string        `firestore:"category" bson:"category" json:"category"`
	Name          string        `firestore:"name" bson:"name" json:"name"`
	Description   string        `firestore:"description" bson:"description" json:"description"`
	Location      string        `firestore:"location" bson:"location" json:"location"`
	Landmark      string        `firestore:"landmark" bson:"landmark" json:"landmark"`
	Latitude      *float64      `firestore:"latitude" bson:"latitude" json:"latitude"`
	Longitude     *float64      `firestore:"longitude" bson:"longitude" json:"longitude"`
	Date          time.Time     `firestore:"date" bson:"date" json:"date"`
	ContactMethod string        `firestore:"contactMethod" bson:"contactMethod" json:"contactMethod"`
	ContactInfo   *string       `firestore:"contactInfo" bson:"contactInfo" json:"contactInfo"`
	Images        []imageRecord `firestore:"images" bson:"images" json:"images"`
	CreatedAt     time.Time     `firestore:"createdAt" bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `firestore:"updatedAt" bson:"updatedAt" json:"updatedAt"`
}

func newReportRecord(r *entity.Report, createdAt, updatedAt time.Time) reportRecord {
	rec := reportRecord{
		Type:          string(r.Type),
		Category:      string(r.Category),
		Name:          r.Name,
		Description:   r.Description,
		Location:      r.Location,
		Landmark:      r.Landmark,
		Date:          entity.CalendarDate(r.Date),
		ContactMethod: string(r.Contact.Method()),
		ContactInfo:   r.Contact.Info(),
		Images:        make([]imageRecord, len(r.Images)),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
	if r.Coordinates != nil {
		lat, lng := r.Coordinates.Latitude, r.Coordinates.Longitude
		rec.Latitude = &lat
		rec.Longitude = &lng
	}
	for i, img := range r.Images {
		rec.Images[i] = imageRecord{URL: img.URL}
	}
	return rec
}

func (rec reportRecord) toEntity(id string) (*entity.Report, error) {
	var info string
	if rec.ContactInfo != nil {
		info = *rec.ContactInfo
	}
	contact, err := entity.NewContact(entity.ContactMethod(rec.ContactMethod), info)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", id, err)
	}

	report := &entity.Report{
		ID:          id,
		Type:        entity.ReportType(rec.Type),
		Category:    entity.Category(rec.Category),
		Name:        rec.Name,
		Description: rec.Description,
		Location:    rec.Location,
		Landmark:    rec.Landmark,
		Date:        entity.CalendarDate(rec.Date),
		Contact:     contact,
		Images:      make([]entity.Image, len(rec.Images)),
		CreatedAt:   rec.CreatedAt.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
	}
	if rec.Latitude != nil && rec.Longitude != nil {
		report.Coordinates = &entity.Coordinates{Latitude: *rec.Latitude, Longitude: *rec.Longitude}
	}
	for i, img := range rec.Images {
		report.Images[i] = entity.Image{URL: img.URL}
	}
	return report, nil
}

// checkConstraints enforces the store-level schema on a report about to be
// written.
func checkConstraints(r *entity.Report) error {
	var violations []string
	if !r.Type.Valid() {
		violations = append(violations, "type")
	}
	if !r.Category.Valid() {
		violations = append(violations, "category")
	}
	if strings.TrimSpace(r.Name) == "" {
		violations = append(violations, "name")
	}
	if r.Date.IsZero() {
		violations = append(violations, "date")
	}
	if r.Contact.IsZero() {
		violations = append(violations, "contactMethod")
	}
	if len(r.Images) > entity.MaxImages {
		violations = append(violations, "images")
	}
	if len(violations) > 0 {
		return errors.Persistence("Report violates store constraints",
			fmt.Errorf("invalid fields: %s", strings.Join(violations, ", ")))
	}
	return nil
}

func cloneReport(r *entity.Report) *entity.Report {
	c := *r
	if r.Coordinates != nil {
		coords := *r.Coordinates
		c.Coordinates = &coords
	}
	c.Images = append([]entity.Image(nil), r.Images...)
	if c.Images == nil {
		c.Images = []entity.Image{}
	}
	return &c
}
