package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"voxcal.io/calendar-assistant/internal/apperrors"
	"voxcal.io/calendar-assistant/internal/store"
	"voxcal.io/calendar-assistant/internal/utils"
)

// ConversationInput creates or replaces a conversation. Both fields are optional.
type ConversationInput struct {
	Title           *string `json:"title" validate:"omitempty,max=200"`
	PromptVersionID *int64  `json:"prompt_version_id" validate:"omitempty,gt=0"`
}

type NoteInput struct {
	Content   string  `json:"content" validate:"notblank,max=10000"`
	Timestamp string  `json:"timestamp" validate:"omitempty,isodatetime"`
	Author    *string `json:"author" validate:"omitempty,max=100"`
}

type ConversationService struct {
	dbStore *store.SQLiteStore
	media   *MediaService
	logger  *zap.Logger
}

func NewConversationService(db *store.SQLiteStore, media *MediaService, logger *zap.Logger) *ConversationService {
	return &ConversationService{dbStore: db, media: media, logger: logger}
}

func (s *ConversationService) ListConversations(ctx context.Context) ([]store.Conversation, error) {
	return s.dbStore.ListConversations(ctx)
}

func (s *ConversationService) GetConversation(ctx context.Context, id int64) (*store.Conversation, error) {
	conversation, err := s.dbStore.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperrors.NewNotFoundError("conversation")
	}
	return conversation, nil
}

func (s *ConversationService) CreateConversation(ctx context.Context, in ConversationInput) (*store.Conversation, error) {
	conversation, err := s.fromInput(ctx, 0, in)
	if err != nil {
		return nil, err
	}
	if err := s.dbStore.CreateConversation(ctx, conversation); err != nil {
		return nil, err
	}
	s.logger.Info("conversation created", zap.Int64("conversation_id", conversation.ID))
	return conversation, nil
}

func (s *ConversationService) UpdateConversation(ctx context.Context, id int64, in ConversationInput) (*store.Conversation, error) {
	conversation, err := s.fromInput(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if err := s.dbStore.UpdateConversation(ctx, conversation); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("conversation")
		}
		return nil, err
	}
	return s.GetConversation(ctx, id)
}

func (s *ConversationService) fromInput(ctx context.Context, id int64, in ConversationInput) (*store.Conversation, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	conversation := &store.Conversation{ID: id, PromptVersionID: in.PromptVersionID}
	if in.Title != nil {
		if title := strings.TrimSpace(*in.Title); title != "" {
			conversation.Title = &title
		}
	}
	if in.PromptVersionID != nil {
		version, err := s.dbStore.GetPromptVersion(ctx, *in.PromptVersionID)
		if err != nil {
			return nil, err
		}
		if version == nil {
			return nil, apperrors.NewFieldError("prompt_version_id", "prompt_version_id does not exist")
		}
	}
	return conversation, nil
}

// DeleteConversation removes the conversation with its recordings,
// transcriptions, and notes, then deletes the uploaded files.
func (s *ConversationService) DeleteConversation(ctx context.Context, id int64) error {
	if err := s.dbStore.DeleteConversation(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NewNotFoundError("conversation")
		}
		return err
	}
	if s.media != nil {
		if err := s.media.RemoveConversationFiles(id); err != nil {
			s.logger.Warn("failed to remove conversation files", zap.Int64("conversation_id", id), zap.Error(err))
		}
	}
	s.logger.Info("conversation deleted", zap.Int64("conversation_id", id))
	return nil
}

func (s *ConversationService) ListAudio(ctx context.Context, conversationID int64) ([]AudioView, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	recordings, err := s.dbStore.ListAudioByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	views := make([]AudioView, 0, len(recordings))
	for _, rec := range recordings {
		views = append(views, newAudioView(rec))
	}
	return views, nil
}

func (s *ConversationService) ListTranscriptions(ctx context.Context, conversationID int64) ([]store.Transcription, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.dbStore.ListTranscriptionsByConversation(ctx, conversationID)
}

func (s *ConversationService) ListNotes(ctx context.Context, conversationID int64) ([]store.Note, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.dbStore.ListNotesByConversation(ctx, conversationID)
}

// AddNote attaches a note to a conversation. Markup is stripped from content
// and author; a missing timestamp defaults to now.
func (s *ConversationService) AddNote(ctx context.Context, conversationID int64, in NoteInput) (*store.Note, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	note := &store.Note{
		ConversationID: conversationID,
		Content:        utils.SanitizeText(in.Content),
		Timestamp:      strings.TrimSpace(in.Timestamp),
	}
	if note.Content == "" {
		return nil, apperrors.NewFieldError("content", "content is required")
	}
	if note.Timestamp == "" {
		note.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if in.Author != nil {
		if author := utils.SanitizeText(*in.Author); author != "" {
			note.Author = &author
		}
	}

	if err := s.dbStore.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *ConversationService) DeleteNote(ctx context.Context, id int64) error {
	if err := s.dbStore.DeleteNote(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NewNotFoundError("note")
		}
		return err
	}
	return nil
}
