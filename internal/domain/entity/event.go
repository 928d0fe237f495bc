package entity

import "time"

// ReportCreatedEvent is published once a report has been persisted.
type ReportCreatedEvent struct {
	ReportID  string     `json:"report_id"`
	Type      ReportType `json:"type"`
	Category  Category   `json:"category"`
	Name      string     `json:"name"`
	Location  string     `json:"location,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Date      string     `json:"date"`
	ImageURLs []string   `json:"image_urls"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewReportCreatedEvent(r *Report) ReportCreatedEvent {
	event := ReportCreatedEvent{
		ReportID:  r.ID,
		Type:      r.Type,
		Category:  r.Category,
		Name:      r.Name,
		Location:  r.Location,
		Date:      r.Date.Format(DateLayout),
		ImageURLs: r.ImageURLs(),
		CreatedAt: r.CreatedAt,
	}
	if r.Coordinates != nil {
		lat, lng := r.Coordinates.Latitude, r.Coordinates.Longitude
		event.Latitude = &lat
		event.Longitude = &lng
	}
	return event
}
