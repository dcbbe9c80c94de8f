package store

import "time"

type Event struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"` // ISO-8601, stored as given
	EndTime     string `json:"end_time"`
}

type Prompt struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// PromptSummary is a prompt joined with its newest version, as listed to the UI.
type PromptSummary struct {
	Prompt
	LatestText             *string    `json:"latest_text,omitempty"`
	LatestVersionID        *int64     `json:"latest_version_id,omitempty"`
	LatestVersionNumber    *int64     `json:"latest_version_number,omitempty"`
	LatestVersionCreatedAt *time.Time `json:"latest_version_created_at,omitempty"`
}

type PromptVersion struct {
	ID            int64     `json:"id"`
	PromptID      int64     `json:"prompt_id"`
	Text          string    `json:"text"`
	VersionNumber int64     `json:"version_number"`
	CreatedAt     time.Time `json:"created_at"`
}

type Conversation struct {
	ID              int64     `json:"id"`
	Title           *string   `json:"title"` // Nullable
	CreatedAt       time.Time `json:"created_at"`
	PromptVersionID *int64    `json:"prompt_version_id"`
}

type AudioRecording struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	FilePath       string    `json:"file_path"` // relative to the upload dir
	MimeType       string    `json:"mime_type"`
	CreatedAt      time.Time `json:"created_at"`
}

type Transcription struct {
	ID        int64     `json:"id"`
	AudioID   int64     `json:"audio_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Note struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Author         *string   `json:"author"`
	Content        string    `json:"content"`
	Timestamp      string    `json:"timestamp"`
	CreatedAt      time.Time `json:"created_at"`
}
