package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"voxcal.io/calendar-assistant/internal/apperrors"
)

func TestCalendarServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewCalendarService(newTestStore(t), nopLogger)

	created, err := svc.CreateEvent(ctx, EventInput{
		Title:     "  Team sync ",
		StartTime: "2025-06-02T09:30",
		EndTime:   "2025-06-02T10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "Team sync", created.Title)

	got, err := svc.GetEvent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCalendarServiceRejectsMissingFields(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewCalendarService(st, nopLogger)

	_, err := svc.CreateEvent(ctx, EventInput{Title: "No times"})
	appErr := requireKind(t, err, apperrors.KindValidation)
	assert.Contains(t, appErr.Details, "start_time")
	assert.Contains(t, appErr.Details, "end_time")

	_, err = svc.CreateEvent(ctx, EventInput{Title: "Bad", StartTime: "soon", EndTime: "2025-01-01T10:00"})
	appErr = requireKind(t, err, apperrors.KindValidation)
	assert.Equal(t, "start_time must be an ISO-8601 date-time", appErr.Details["start_time"])

	events, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, events, "rejected input must not be persisted")
}

func TestCalendarServiceNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewCalendarService(newTestStore(t), nopLogger)

	_, err := svc.GetEvent(ctx, 7)
	requireKind(t, err, apperrors.KindNotFound)

	_, err = svc.UpdateEvent(ctx, 7, EventInput{Title: "x", StartTime: "2025-01-01T10:00", EndTime: "2025-01-01T11:00"})
	requireKind(t, err, apperrors.KindNotFound)

	requireKind(t, svc.DeleteEvent(ctx, 7), apperrors.KindNotFound)

	events, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}
