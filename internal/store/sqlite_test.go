package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func strPtr(s string) *string { return &s }

func TestEventCRUD(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	e := &Event{Title: "Dentist", Description: "Checkup", StartTime: "2025-05-01T09:00", EndTime: "2025-05-01T10:00"}
	require.NoError(t, st.CreateEvent(ctx, e))
	require.NotZero(t, e.ID)

	got, err := st.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	e.Title = "Dentist (moved)"
	e.StartTime = "2025-05-02T09:00"
	require.NoError(t, st.UpdateEvent(ctx, e))
	got, err = st.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dentist (moved)", got.Title)

	events, err := st.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	require.NoError(t, st.DeleteEvent(ctx, e.ID))
	got, err = st.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, st.DeleteEvent(ctx, e.ID), ErrNotFound)
	assert.ErrorIs(t, st.UpdateEvent(ctx, &Event{ID: 999, Title: "x", StartTime: "a", EndTime: "b"}), ErrNotFound)
}

func TestListEventsEmptyIsNotNil(t *testing.T) {
	events, err := newTestStore(t).ListEvents(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestPromptVersionsIncreaseFromOne(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	p := &Prompt{Name: "assistant", Description: "default"}
	v1, err := st.CreatePrompt(ctx, p, "You are helpful.")
	require.NoError(t, err)
	assert.EqualValues(t, 1, v1.VersionNumber)

	v2, err := st.CreatePromptVersion(ctx, p.ID, "You are very helpful.")
	require.NoError(t, err)
	v3, err := st.CreatePromptVersion(ctx, p.ID, "You are concise.")
	require.NoError(t, err)
	assert.EqualValues(t, 2, v2.VersionNumber)
	assert.EqualValues(t, 3, v3.VersionNumber)

	// Numbering is per prompt.
	other := &Prompt{Name: "other"}
	ov1, err := st.CreatePrompt(ctx, other, "Other.")
	require.NoError(t, err)
	assert.EqualValues(t, 1, ov1.VersionNumber)

	versions, err := st.ListPromptVersions(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.EqualValues(t, i+1, v.VersionNumber)
	}

	_, err = st.CreatePromptVersion(ctx, 12345, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPromptsIncludesLatestVersion(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	p := &Prompt{Name: "calendar"}
	_, err := st.CreatePrompt(ctx, p, "v1 text")
	require.NoError(t, err)
	v2, err := st.CreatePromptVersion(ctx, p.ID, "v2 text")
	require.NoError(t, err)

	prompts, err := st.ListPrompts(ctx)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	require.NotNil(t, prompts[0].LatestText)
	assert.Equal(t, "v2 text", *prompts[0].LatestText)
	assert.Equal(t, v2.ID, *prompts[0].LatestVersionID)
	assert.EqualValues(t, 2, *prompts[0].LatestVersionNumber)
	assert.NotNil(t, prompts[0].LatestVersionCreatedAt)
}

func TestDuplicatePromptName(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.CreatePrompt(ctx, &Prompt{Name: "dup"}, "a")
	require.NoError(t, err)
	_, err = st.CreatePrompt(ctx, &Prompt{Name: "dup"}, "b")
	assert.ErrorIs(t, err, ErrDuplicate)

	// The failed insert must not leave a dangling version behind.
	prompts, err := st.ListPrompts(ctx)
	require.NoError(t, err)
	assert.Len(t, prompts, 1)
}

func TestDeleteConversationCascades(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	c := &Conversation{Title: strPtr("Morning planning")}
	require.NoError(t, st.CreateConversation(ctx, c))

	a := &AudioRecording{ConversationID: c.ID, FilePath: "1/a.webm", MimeType: "audio/webm"}
	require.NoError(t, st.CreateAudioRecording(ctx, a))
	require.NoError(t, st.CreateTranscription(ctx, &Transcription{AudioID: a.ID, Text: "hello"}))
	require.NoError(t, st.CreateNote(ctx, &Note{ConversationID: c.ID, Content: "follow up", Timestamp: "2025-01-01T10:00:00Z"}))

	require.NoError(t, st.DeleteConversation(ctx, c.ID))

	audio, err := st.ListAudioByConversation(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, audio)
	notes, err := st.ListNotesByConversation(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
	gotAudio, err := st.GetAudioRecording(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, gotAudio)

	var n int
	require.NoError(t, st.db.QueryRow("SELECT COUNT(*) FROM transcriptions").Scan(&n))
	assert.Zero(t, n)
}

func TestDeletePromptClearsConversationLink(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	p := &Prompt{Name: "linked"}
	v, err := st.CreatePrompt(ctx, p, "text")
	require.NoError(t, err)

	c := &Conversation{PromptVersionID: &v.ID}
	require.NoError(t, st.CreateConversation(ctx, c))
	require.NoError(t, st.DeletePrompt(ctx, p.ID))

	got, err := st.GetConversation(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.PromptVersionID)
}

func TestForeignKeysEnforced(t *testing.T) {
	st := newTestStore(t)
	err := st.CreateNote(context.Background(), &Note{ConversationID: 42, Content: "orphan", Timestamp: "2025-01-01T00:00"})
	assert.Error(t, err)
}

func TestUpdateConversationTitleIfEmpty(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	c := &Conversation{}
	require.NoError(t, st.CreateConversation(ctx, c))

	changed, err := st.UpdateConversationTitleIfEmpty(ctx, c.ID, "Generated")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = st.UpdateConversationTitleIfEmpty(ctx, c.ID, "Second")
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := st.GetConversation(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Generated", *got.Title)
}

func TestTranscriptionsByConversation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	c1 := &Conversation{}
	c2 := &Conversation{}
	require.NoError(t, st.CreateConversation(ctx, c1))
	require.NoError(t, st.CreateConversation(ctx, c2))

	a1 := &AudioRecording{ConversationID: c1.ID, FilePath: "x"}
	a2 := &AudioRecording{ConversationID: c2.ID, FilePath: "y"}
	require.NoError(t, st.CreateAudioRecording(ctx, a1))
	require.NoError(t, st.CreateAudioRecording(ctx, a2))
	require.NoError(t, st.CreateTranscription(ctx, &Transcription{AudioID: a1.ID, Text: "one"}))
	require.NoError(t, st.CreateTranscription(ctx, &Transcription{AudioID: a2.ID, Text: "two"}))

	ts, err := st.ListTranscriptionsByConversation(ctx, c1.ID)
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, "one", ts[0].Text)
	assert.Equal(t, a1.ID, ts[0].AudioID)
}

func TestSeedPrompts(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	seed := `
prompts:
  - name: calendar
    description: Calendar helper
    text: |
      Help the user manage events.
  - name: notes
    text: Summarize the call.
`
	res, err := st.SeedPrompts(ctx, strings.NewReader(seed))
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Created: 2}, res)

	// Same file again changes nothing.
	res, err = st.SeedPrompts(ctx, strings.NewReader(seed))
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Unchanged: 2}, res)

	changed := strings.Replace(seed, "Summarize the call.", "Summarize the call in three bullets.", 1)
	res, err = st.SeedPrompts(ctx, strings.NewReader(changed))
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Versioned: 1, Unchanged: 1}, res)

	p, err := st.GetPromptByName(ctx, "notes")
	require.NoError(t, err)
	latest, err := st.LatestPromptVersion(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, latest.VersionNumber)
}

func TestSeedPromptsRejectsIncompleteEntry(t *testing.T) {
	_, err := newTestStore(t).SeedPrompts(context.Background(), strings.NewReader("prompts:\n  - name: empty\n"))
	assert.Error(t, err)
}
