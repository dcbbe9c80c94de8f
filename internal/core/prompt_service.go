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

type CreatePromptInput struct {
	Name        string `json:"name" validate:"notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Text        string `json:"text" validate:"notblank"`
}

type UpdatePromptInput struct {
	Name        string `json:"name" validate:"notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type PromptVersionInput struct {
	Text string `json:"text" validate:"notblank"`
}

// PromptDetail is a prompt with its full version history, oldest first.
type PromptDetail struct {
	store.Prompt
	Versions []store.PromptVersion `json:"versions"`
}

type PromptService struct {
	dbStore *store.SQLiteStore
	logger  *zap.Logger
}

func NewPromptService(db *store.SQLiteStore, logger *zap.Logger) *PromptService {
	return &PromptService{dbStore: db, logger: logger}
}

func (s *PromptService) ListPrompts(ctx context.Context) ([]store.PromptSummary, error) {
	return s.dbStore.ListPrompts(ctx)
}

func (s *PromptService) GetPrompt(ctx context.Context, id int64) (*PromptDetail, error) {
	prompt, err := s.dbStore.GetPrompt(ctx, id)
	if err != nil {
		return nil, err
	}
	if prompt == nil {
		return nil, apperrors.NewNotFoundError("prompt")
	}
	versions, err := s.dbStore.ListPromptVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PromptDetail{Prompt: *prompt, Versions: versions}, nil
}

// CreatePrompt stores a new prompt whose first version holds in.Text.
func (s *PromptService) CreatePrompt(ctx context.Context, in CreatePromptInput) (*PromptDetail, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	prompt := &store.Prompt{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	version, err := s.dbStore.CreatePrompt(ctx, prompt, in.Text)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.NewFieldError("name", "a prompt with this name already exists")
		}
		return nil, err
	}
	s.logger.Info("prompt created", zap.Int64("prompt_id", prompt.ID), zap.String("name", prompt.Name))
	return &PromptDetail{Prompt: *prompt, Versions: []store.PromptVersion{*version}}, nil
}

func (s *PromptService) UpdatePrompt(ctx context.Context, id int64, in UpdatePromptInput) (*PromptDetail, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	prompt := &store.Prompt{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.dbStore.UpdatePrompt(ctx, prompt); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, apperrors.NewNotFoundError("prompt")
		case errors.Is(err, store.ErrDuplicate):
			return nil, apperrors.NewFieldError("name", "a prompt with this name already exists")
		}
		return nil, err
	}
	return s.GetPrompt(ctx, id)
}

func (s *PromptService) DeletePrompt(ctx context.Context, id int64) error {
	if err := s.dbStore.DeletePrompt(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NewNotFoundError("prompt")
		}
		return err
	}
	return nil
}

func (s *PromptService) ListVersions(ctx context.Context, promptID int64) ([]store.PromptVersion, error) {
	prompt, err := s.dbStore.GetPrompt(ctx, promptID)
	if err != nil {
		return nil, err
	}
	if prompt == nil {
		return nil, apperrors.NewNotFoundError("prompt")
	}
	return s.dbStore.ListPromptVersions(ctx, promptID)
}

// CreateVersion appends the next version; numbers start at 1 and strictly
// increase per prompt.
func (s *PromptService) CreateVersion(ctx context.Context, promptID int64, in PromptVersionInput) (*store.PromptVersion, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	version, err := s.dbStore.CreatePromptVersion(ctx, promptID, in.Text)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("prompt")
		}
		return nil, err
	}
	s.logger.Info("prompt version created",
		zap.Int64("prompt_id", promptID),
		zap.Int64("version_number", version.VersionNumber))
	return version, nil
}
