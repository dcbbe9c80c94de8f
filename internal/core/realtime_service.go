package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"voxcal.io/calendar-assistant/internal/apperrors"
	"voxcal.io/calendar-assistant/internal/store"
)

const DefaultRealtimeModel = "gpt-4o-realtime-preview-2024-12-17"

// AllowedRealtimeModels are the only model names forwarded to the vendor.
var AllowedRealtimeModels = []string{
	"gpt-4o-realtime-preview-2024-12-17",
	"gpt-4o-mini-realtime-preview-2024-12-17",
}

type RealtimeConfig struct {
	APIKey     string
	BaseURL    string
	Voice      string
	HTTPClient *http.Client // optional
}

// SessionRequest selects the model and, optionally, a stored prompt version
// whose text becomes the session instructions.
type SessionRequest struct {
	Model           string
	PromptVersionID *int64
}

// RealtimeService mints ephemeral realtime-session credentials so the browser
// never sees the long-lived API key.
type RealtimeService struct {
	client     openai.Client
	configured bool
	voice      string
	dbStore    *store.SQLiteStore
	logger     *zap.Logger
}

func NewRealtimeService(cfg RealtimeConfig, db *store.SQLiteStore, logger *zap.Logger) *RealtimeService {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &RealtimeService{
		client:     openai.NewClient(opts...),
		configured: cfg.APIKey != "",
		voice:      cfg.Voice,
		dbStore:    db,
		logger:     logger,
	}
}

type sessionBody struct {
	Model        string `json:"model"`
	Voice        string `json:"voice,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// CreateSession asks the vendor for a realtime session and returns its JSON
// response unchanged.
func (s *RealtimeService) CreateSession(ctx context.Context, req SessionRequest) (json.RawMessage, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = DefaultRealtimeModel
	}
	if !slices.Contains(AllowedRealtimeModels, model) {
		return nil, apperrors.NewFieldError("model",
			"model must be one of: "+strings.Join(AllowedRealtimeModels, ", "))
	}

	body := sessionBody{Model: model, Voice: s.voice}
	if req.PromptVersionID != nil {
		version, err := s.dbStore.GetPromptVersion(ctx, *req.PromptVersionID)
		if err != nil {
			return nil, err
		}
		if version == nil {
			return nil, apperrors.NewFieldError("prompt_version_id", "prompt_version_id does not exist")
		}
		body.Instructions = version.Text
	}

	if !s.configured {
		return nil, apperrors.NewConfigError("OPENAI_API_KEY is not configured")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session request: %w", err)
	}

	var out json.RawMessage
	if err := s.client.Post(ctx, "realtime/sessions", json.RawMessage(payload), &out); err != nil {
		s.logger.Warn("realtime session request failed", zap.String("model", model), zap.Error(err))
		return nil, upstreamSessionError(err)
	}

	s.logger.Info("realtime session created", zap.String("model", model))
	return out, nil
}

// upstreamSessionError keeps whatever detail the vendor reported.
func upstreamSessionError(err error) error {
	details := map[string]any{}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		details["status"] = apiErr.StatusCode
		if apiErr.Message != "" {
			details["message"] = apiErr.Message
		}
		if apiErr.Type != "" {
			details["type"] = apiErr.Type
		}
	} else {
		details["message"] = err.Error()
	}
	return apperrors.NewUpstreamError("failed to create realtime session", err).WithDetails(details)
}
