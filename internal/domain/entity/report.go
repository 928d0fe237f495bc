package entity

import (
	"fmt"
	"strings"
	"time"
)

type ReportType string

const (
	ReportTypeLost  ReportType = "lost"
	ReportTypeFound ReportType = "found"
)

func (t ReportType) Valid() bool {
	return t == ReportTypeLost || t == ReportTypeFound
}

type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryAccessories Category = "accessories"
	CategoryBooks       Category = "books"
	CategoryIDs         Category = "ids"
	CategoryOther       Category = "other"
)

var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryAccessories,
	CategoryBooks,
	CategoryIDs,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ItemStatus is what the gallery filters on. A report's status is its type;
// claimed exists as a filter value only, no report is ever claimed.
type ItemStatus string

const (
	StatusLost    ItemStatus = "lost"
	StatusFound   ItemStatus = "found"
	StatusClaimed ItemStatus = "claimed"
)

func (s ItemStatus) Valid() bool {
	return s == StatusLost || s == StatusFound || s == StatusClaimed
}

// MaxImages is the number of images a single report may reference.
const MaxImages = 3

// DateLayout is the wire and form layout of Report.Date.
const DateLayout = "2006-01-02"

type Image struct {
	URL string `json:"url"`
}

type Report struct {
	ID          string
	Type        ReportType
	Category    Category
	Name        string
	Description string
	Location    string
	Landmark    string
	Coordinates *Coordinates
	Date        time.Time
	Contact     Contact
	Images      []Image
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

func (r *Report) Status() ItemStatus {
	return ItemStatus(r.Type)
}

// ImageURLs returns the image URLs in stored order.
func (r *Report) ImageURLs() []string {
	urls := make([]string, len(r.Images))
	for i, img := range r.Images {
		urls[i] = img.URL
	}
	return urls
}

// DaysSince returns the number of whole days between the report date and now,
// both taken as UTC calendar dates.
func (r *Report) DaysSince(now time.Time) int {
	today := CalendarDate(now)
	return int(today.Sub(CalendarDate(r.Date)).Hours() / 24)
}

// CalendarDate truncates t to midnight UTC of its UTC calendar day.
func CalendarDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts a YYYY-MM-DD date or an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return CalendarDate(t), nil
}
