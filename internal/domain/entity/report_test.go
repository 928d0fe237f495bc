package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactInAppHasNoInfo(t *testing.T) {
	c, err := NewContact(ContactInApp, "someone@campus.edu")
	require.NoError(t, err)

	assert.Equal(t, ContactInApp, c.Method())
	assert.Nil(t, c.Info())
}

func TestContactEmailRequiresInfo(t *testing.T) {
	_, err := NewContact(ContactEmail, "")
	assert.Error(t, err)

	c, err := NewContact(ContactEmail, "owner@campus.edu")
	require.NoError(t, err)
	require.NotNil(t, c.Info())
	assert.Equal(t, "owner@campus.edu", *c.Info())
}

func TestContactUnknownMethod(t *testing.T) {
	_, err := NewContact("pigeon", "coop 4")
	assert.Error(t, err)
	assert.True(t, Contact{}.IsZero())
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryIDs.Valid())
	assert.False(t, Category("bags").Valid())
	assert.False(t, Category("Electronics").Valid())
}

func TestStatusFollowsType(t *testing.T) {
	r := &Report{Type: ReportTypeFound}
	assert.Equal(t, StatusFound, r.Status())
	assert.True(t, StatusClaimed.Valid())
}

func TestDaysSince(t *testing.T) {
	r := &Report{Date: time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, 0, r.DaysSince(time.Date(2026, 10, 10, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 8, r.DaysSince(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-10-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2026-10-01T22:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("yesterday")
	assert.Error(t, err)
}

func TestReportCreatedEventCarriesCoordinates(t *testing.T) {
	created := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	r := &Report{
		ID:          "r1",
		Type:        ReportTypeLost,
		Category:    CategoryBooks,
		Name:        "Organic Chemistry textbook",
		Coordinates: &Coordinates{Latitude: 40.1, Longitude: -88.2},
		Date:        time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
		Images:      []Image{{URL: "https://img/a.jpg"}},
		CreatedAt:   created,
	}

	event := NewReportCreatedEvent(r)

	assert.Equal(t, "r1", event.ReportID)
	assert.Equal(t, "2026-10-17", event.Date)
	require.NotNil(t, event.Latitude)
	assert.Equal(t, 40.1, *event.Latitude)
	assert.Equal(t, []string{"https://img/a.jpg"}, event.ImageURLs)
}
