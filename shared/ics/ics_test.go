package ics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villa/shared/ics"
)

const sampleFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Airbnb Inc//Hosting Calendar 1.0//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:airbnb-123@airbnb.com\r\n" +
	"DTSTART;VALUE=DATE:20250801\r\n" +
	"DTEND;VALUE=DATE:20250803\r\n" +
	"SUMMARY:Reserved\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:airbnb-456@airbnb.com\r\n" +
	"DTSTART:20250810T140000Z\r\n" +
	"DTEND:20250812T100000Z\r\n" +
	"SUMMARY:Not available\r\n" +
	"DESCRIPTION:Blocked by host\\, maintenance\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParse(t *testing.T) {
	events, err := ics.Parse([]byte(sampleFeed))
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "airbnb-123@airbnb.com", first.UID)
	assert.Equal(t, "Reserved", first.Summary)
	assert.True(t, first.AllDay)
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), first.Start)
	assert.Equal(t, time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC), first.End)
	assert.True(t, first.HasDates())

	second := events[1]
	assert.False(t, second.AllDay)
	assert.Equal(t, time.Date(2025, 8, 10, 14, 0, 0, 0, time.UTC), second.Start)
	assert.Equal(t, "Blocked by host, maintenance", second.Description)
}

func TestParseMissingEnd(t *testing.T) {
	feed := "BEGIN:VCALENDAR\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:half-open-event\r\n" +
		"DTSTART;VALUE=DATE:20250801\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	events, err := ics.Parse([]byte(feed))
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.False(t, events[0].HasDates())
	assert.True(t, events[0].End.IsZero())
}

func TestParseFoldedLines(t *testing.T) {
	feed := "BEGIN:VCALENDAR\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:folded\r\n" +
		"SUMMARY:A summary that was split\r\n" +
		"  across two lines\r\n" +
		"DTSTART;VALUE=DATE:20250801\r\n" +
		"DTEND;VALUE=DATE:20250802\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	events, err := ics.Parse([]byte(feed))
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "A summary that was split across two lines", events[0].Summary)
}

func TestParseNotCalendar(t *testing.T) {
	_, err := ics.Parse([]byte("<html>not a calendar</html>"))

	assert.ErrorIs(t, err, ics.ErrNotCalendar)
}

func TestParseLFOnlyLineEndings(t *testing.T) {
	feed := strings.ReplaceAll(sampleFeed, "\r\n", "\n")

	events, err := ics.Parse([]byte(feed))
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestRenderRoundTrip(t *testing.T) {
	cal := ics.NewCalendar("Sea View Room")
	cal.AddEvent(ics.Event{
		UID:         "booking-1@villa",
		Summary:     "Booked: Ana Silva",
		Description: "2 guests",
		Start:       time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC),
		AllDay:      true,
	})

	rendered := cal.Render()

	assert.True(t, strings.HasPrefix(string(rendered), "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, string(rendered), "DTSTART;VALUE=DATE:20250701")
	assert.Contains(t, string(rendered), "DTEND;VALUE=DATE:20250705")

	events, err := ics.Parse(rendered)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "booking-1@villa", events[0].UID)
	assert.Equal(t, "Booked: Ana Silva", events[0].Summary)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), events[0].Start)
}

func TestRenderFoldsLongLines(t *testing.T) {
	cal := ics.NewCalendar("")
	cal.AddEvent(ics.Event{
		UID:     "long",
		Summary: strings.Repeat("a", 200),
		Start:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
		AllDay:  true,
	})

	for _, line := range strings.Split(string(cal.Render()), "\r\n") {
		assert.LessOrEqual(t, len(line), 75)
	}
}
