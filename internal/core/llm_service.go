package core

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	defaultTranscriptionModelName = "gemini-1.5-flash-latest"
	defaultTitleModelName         = "gemini-1.5-flash-latest"

	transcriptionInstruction = "You transcribe recordings of a voice assistant session. " +
		"Return only the spoken words as plain text, one speaker turn per line. " +
		"Do not summarize, translate, or add commentary."

	titleSystemInstruction = "You are a helpful assistant that generates concise titles for voice conversations. " +
		"The title should be 3-5 words maximum. Just return the title itself, nothing else."

	// Transcripts are cut before being sent for titling.
	maxTitleSourceChars = 2000
)

// LLMService talks to Gemini for audio transcription and title generation.
type LLMService struct {
	client *genai.Client
	logger *zap.Logger
}

func NewLLMService(ctx context.Context, apiKey string, logger *zap.Logger) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &LLMService{client: client, logger: logger}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.logger.Warn("error closing GenAI client", zap.Error(err))
		} else {
			s.logger.Debug("GenAI client closed")
		}
	}
}

// Transcribe sends the audio inline to Gemini and returns the transcript.
func (s *LLMService) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio to transcribe")
	}
	model := s.client.GenerativeModel(defaultTranscriptionModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(transcriptionInstruction)},
	}
	temp := float32(0)
	model.GenerationConfig = genai.GenerationConfig{Temperature: &temp}

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: audio},
		genai.Text("Transcribe this recording."))
	if err != nil {
		return "", fmt.Errorf("gemini transcription request failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty transcription")
	}
	return text, nil
}

func (s *LLMService) GenerateTitle(ctx context.Context, transcript string) (string, error) {
	model := s.client.GenerativeModel(defaultTitleModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(titleSystemInstruction)},
	}

	temp := float32(0.3)
	maxTokens := int32(20)
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: &maxTokens,
		Temperature:     &temp,
	}

	transcript = truncateRunes(transcript, maxTitleSourceChars)
	userPromptForTitle := fmt.Sprintf("Generate a very concise title (3-5 words maximum) for a conversation with this transcript: \"%s\".", transcript)

	resp, err := model.GenerateContent(ctx, genai.Text(userPromptForTitle))
	if err != nil {
		return "", fmt.Errorf("gemini title generation request failed: %w", err)
	}

	title := responseText(resp)
	if title == "" {
		return "", fmt.Errorf("LLM generated an empty title string")
	}
	return strings.Trim(title, "\"'\n\r\t ."), nil
}

// truncateRunes cuts s to at most n runes, keeping it valid UTF-8.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
