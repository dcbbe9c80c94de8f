package core

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"voxcal.io/calendar-assistant/internal/apperrors"
	"voxcal.io/calendar-assistant/internal/store"
	"voxcal.io/calendar-assistant/internal/utils"
)

// UploadsURLPrefix is where the upload directory is served over HTTP.
const UploadsURLPrefix = "/uploads/"

const (
	defaultAudioExt  = ".webm"
	defaultAudioMime = "audio/webm"
	titleTimeout     = 30 * time.Second
)

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// TitleGenerator proposes a short conversation title from a transcript.
type TitleGenerator interface {
	GenerateTitle(ctx context.Context, transcript string) (string, error)
}

// AudioView is an audio recording plus the URL it is served from.
type AudioView struct {
	store.AudioRecording
	URL string `json:"url"`
}

func newAudioView(a store.AudioRecording) AudioView {
	return AudioView{AudioRecording: a, URL: UploadsURLPrefix + a.FilePath}
}

type TranscriptionInput struct {
	Text string `json:"text" validate:"notblank"`
}

type MediaService struct {
	dbStore     *store.SQLiteStore
	uploadDir   string
	transcriber Transcriber    // nil when transcription is not configured
	titler      TitleGenerator // nil disables automatic titles
	logger      *zap.Logger

	background sync.WaitGroup
}

func NewMediaService(db *store.SQLiteStore, uploadDir string, transcriber Transcriber, titler TitleGenerator, logger *zap.Logger) *MediaService {
	return &MediaService{
		dbStore:     db,
		uploadDir:   uploadDir,
		transcriber: transcriber,
		titler:      titler,
		logger:      logger,
	}
}

// UploadDir is the directory uploaded files are written to.
func (s *MediaService) UploadDir() string {
	return s.uploadDir
}

// SaveAudio writes an uploaded recording to disk and records it against the
// conversation. Files are stored as <conversation id>/<uuid><ext>.
func (s *MediaService) SaveAudio(ctx context.Context, conversationID int64, filename, contentType string, r io.Reader) (*AudioView, error) {
	conversation, err := s.dbStore.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperrors.NewNotFoundError("conversation")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !safeExt.MatchString(ext) {
		ext = defaultAudioExt
	}
	relPath := path.Join(strconv.FormatInt(conversationID, 10), uuid.NewString()+ext)
	diskPath := filepath.Join(s.uploadDir, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(diskPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	f, err := os.Create(diskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	written, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(diskPath)
		if copyErr == nil {
			copyErr = closeErr
		}
		return nil, fmt.Errorf("failed to write upload file: %w", copyErr)
	}
	if written == 0 {
		os.Remove(diskPath)
		return nil, apperrors.NewFieldError("file", "file is empty")
	}

	recording := &store.AudioRecording{
		ConversationID: conversationID,
		FilePath:       relPath,
		MimeType:       audioMimeType(contentType, ext),
	}
	if err := s.dbStore.CreateAudioRecording(ctx, recording); err != nil {
		os.Remove(diskPath)
		return nil, err
	}

	s.logger.Info("audio uploaded",
		zap.Int64("conversation_id", conversationID),
		zap.Int64("audio_id", recording.ID),
		zap.String("file_path", relPath),
		zap.Int64("bytes", written))
	view := newAudioView(*recording)
	return &view, nil
}

// audioMimeType prefers the uploaded Content-Type, then the extension. An
// extension lookup is only used when it yields an audio/* type.
func audioMimeType(contentType, ext string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType != "application/octet-stream" {
		return mediaType
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil && strings.HasPrefix(mediaType, "audio/") {
			return mediaType
		}
	}
	return defaultAudioMime
}

// RemoveConversationFiles deletes the upload directory of a conversation.
func (s *MediaService) RemoveConversationFiles(conversationID int64) error {
	dir := filepath.Join(s.uploadDir, strconv.FormatInt(conversationID, 10))
	return os.RemoveAll(dir)
}

// AddTranscription stores transcript text produced elsewhere (for example by
// the browser session) for an audio recording. It does not trigger automatic
// titling.
func (s *MediaService) AddTranscription(ctx context.Context, audioID int64, in TranscriptionInput) (*store.Transcription, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	recording, err := s.getRecording(ctx, audioID)
	if err != nil {
		return nil, err
	}
	return s.storeTranscription(ctx, recording, strings.TrimSpace(in.Text))
}

// TranscribeAudio runs the configured Transcriber over a stored recording.
func (s *MediaService) TranscribeAudio(ctx context.Context, audioID int64) (*store.Transcription, error) {
	if s.transcriber == nil {
		return nil, apperrors.NewConfigError("transcription is not configured (GEMINI_API_KEY is unset)")
	}
	recording, err := s.getRecording(ctx, audioID)
	if err != nil {
		return nil, err
	}

	audio, err := os.ReadFile(filepath.Join(s.uploadDir, filepath.FromSlash(recording.FilePath)))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	text, err := s.transcriber.Transcribe(ctx, audio, recording.MimeType)
	if err != nil {
		return nil, apperrors.NewUpstreamError("transcription failed", err).
			WithDetails(map[string]any{"reason": err.Error()})
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewUpstreamError("transcription returned no text", nil)
	}
	t, err := s.storeTranscription(ctx, recording, text)
	if err != nil {
		return nil, err
	}
	s.maybeGenerateTitle(recording.ConversationID, text)
	return t, nil
}

func (s *MediaService) getRecording(ctx context.Context, audioID int64) (*store.AudioRecording, error) {
	recording, err := s.dbStore.GetAudioRecording(ctx, audioID)
	if err != nil {
		return nil, err
	}
	if recording == nil {
		return nil, apperrors.NewNotFoundError("audio recording")
	}
	return recording, nil
}

func (s *MediaService) storeTranscription(ctx context.Context, recording *store.AudioRecording, text string) (*store.Transcription, error) {
	t := &store.Transcription{AudioID: recording.ID, Text: text}
	if err := s.dbStore.CreateTranscription(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// maybeGenerateTitle names an untitled conversation from its transcript in
// the background.
func (s *MediaService) maybeGenerateTitle(conversationID int64, transcript string) {
	if s.titler == nil {
		return
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), titleTimeout)
		defer cancel()
		s.generateAndSaveTitle(ctx, conversationID, transcript)
	}()
}

func (s *MediaService) generateAndSaveTitle(ctx context.Context, conversationID int64, transcript string) {
	conversation, err := s.dbStore.GetConversation(ctx, conversationID)
	if err != nil || conversation == nil {
		return
	}
	if conversation.Title != nil && *conversation.Title != "" {
		return
	}

	title, err := s.titler.GenerateTitle(ctx, transcript)
	if err != nil {
		s.logger.Warn("failed to generate conversation title",
			zap.Int64("conversation_id", conversationID), zap.Error(err))
		return
	}
	title = strings.Trim(title, "\"'\n\r\t .")
	if title == "" {
		return
	}

	updated, err := s.dbStore.UpdateConversationTitleIfEmpty(ctx, conversationID, title)
	if err != nil {
		s.logger.Warn("failed to save conversation title",
			zap.Int64("conversation_id", conversationID), zap.String("title", title), zap.Error(err))
		return
	}
	if updated {
		s.logger.Info("conversation titled",
			zap.Int64("conversation_id", conversationID), zap.String("title", title))
	}
}

// Wait blocks until background title generation has finished.
func (s *MediaService) Wait() {
	s.background.Wait()
}
