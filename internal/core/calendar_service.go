package core

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"voxcal.io/calendar-assistant/internal/apperrors"
	"voxcal.io/calendar-assistant/internal/store"
	"voxcal.io/calendar-assistant/internal/utils"
)

// EventInput is the body accepted when creating or replacing an event.
type EventInput struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description" validate:"max=5000"`
	StartTime   string `json:"start_time" validate:"required,isodatetime"`
	EndTime     string `json:"end_time" validate:"required,isodatetime"`
}

func (in EventInput) toEvent(id int64) *store.Event {
	return &store.Event{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		StartTime:   strings.TrimSpace(in.StartTime),
		EndTime:     strings.TrimSpace(in.EndTime),
	}
}

type CalendarService struct {
	dbStore *store.SQLiteStore
	logger  *zap.Logger
}

func NewCalendarService(db *store.SQLiteStore, logger *zap.Logger) *CalendarService {
	return &CalendarService{dbStore: db, logger: logger}
}

func (s *CalendarService) ListEvents(ctx context.Context) ([]store.Event, error) {
	return s.dbStore.ListEvents(ctx)
}

func (s *CalendarService) GetEvent(ctx context.Context, id int64) (*store.Event, error) {
	event, err := s.dbStore.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperrors.NewNotFoundError("event")
	}
	return event, nil
}

func (s *CalendarService) CreateEvent(ctx context.Context, in EventInput) (*store.Event, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	event := in.toEvent(0)
	if err := s.dbStore.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	s.logger.Debug("event created", zap.Int64("event_id", event.ID))
	return event, nil
}

func (s *CalendarService) UpdateEvent(ctx context.Context, id int64, in EventInput) (*store.Event, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	event := in.toEvent(id)
	if err := s.dbStore.UpdateEvent(ctx, event); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("event")
		}
		return nil, err
	}
	return event, nil
}

func (s *CalendarService) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.dbStore.DeleteEvent(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NewNotFoundError("event")
		}
		return err
	}
	return nil
}
