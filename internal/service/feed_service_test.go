package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:evt-1
DTSTART:20250204T100000Z
DTEND:20250204T110000Z
SUMMARY:Standup
END:VEVENT
BEGIN:VEVENT
UID:evt-2
DTSTART:20250301T090000Z
DTEND:20250301T100000Z
SUMMARY:Out of range
END:VEVENT
END:VCALENDAR
`

func TestParseBusyFeed(t *testing.T) {
	intervals, err := parseBusyFeed(strings.NewReader(sampleICS))
	require.NoError(t, err)
	require.Len(t, intervals, 2)
	assert.Equal(t, time.Date(2025, 2, 4, 10, 0, 0, 0, time.UTC), intervals[0].Start.UTC())
	assert.Equal(t, time.Date(2025, 2, 4, 11, 0, 0, 0, time.UTC), intervals[0].End.UTC())
}

func TestParseBusyFeedRejectsGarbage(t *testing.T) {
	_, err := parseBusyFeed(strings.NewReader("not an ics document"))
	assert.Error(t, err)
}

func TestFeedServiceBusyIntervalsClampsToRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer server.Close()

	svc := NewFeedService(server.Client(), nil, nil, FeedConfig{URL: server.URL})

	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)
	intervals := svc.BusyIntervals(context.Background(), start, end)

	require.Len(t, intervals, 1)
	assert.Equal(t, time.Date(2025, 2, 4, 10, 0, 0, 0, time.UTC), intervals[0].Start.UTC())
}

func TestFeedServiceDegradesWhenFeedDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewFeedService(server.Client(), nil, nil, FeedConfig{URL: server.URL})

	intervals := svc.BusyIntervals(context.Background(),
		time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, intervals)
}

func TestFeedServiceDisabledWithoutURL(t *testing.T) {
	svc := NewFeedService(nil, nil, nil, FeedConfig{})

	assert.False(t, svc.Enabled())
	assert.Nil(t, svc.BusyIntervals(context.Background(), time.Now(), time.Now().AddDate(0, 0, 7)))
}
