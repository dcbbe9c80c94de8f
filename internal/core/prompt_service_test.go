package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"voxcal.io/calendar-assistant/internal/apperrors"
)

func TestPromptServiceVersioning(t *testing.T) {
	ctx := context.Background()
	svc := NewPromptService(newTestStore(t), nopLogger)

	detail, err := svc.CreatePrompt(ctx, CreatePromptInput{Name: "calendar", Text: "Help schedule events."})
	require.NoError(t, err)
	require.Len(t, detail.Versions, 1)
	assert.EqualValues(t, 1, detail.Versions[0].VersionNumber)

	var last int64 = 1
	for i := 0; i < 4; i++ {
		v, err := svc.CreateVersion(ctx, detail.ID, PromptVersionInput{Text: "revision"})
		require.NoError(t, err)
		assert.Greater(t, v.VersionNumber, last)
		last = v.VersionNumber
	}
	assert.EqualValues(t, 5, last)

	got, err := svc.GetPrompt(ctx, detail.ID)
	require.NoError(t, err)
	assert.Len(t, got.Versions, 5)
}

func TestPromptServiceErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewPromptService(newTestStore(t), nopLogger)

	_, err := svc.CreatePrompt(ctx, CreatePromptInput{Name: "", Text: ""})
	appErr := requireKind(t, err, apperrors.KindValidation)
	assert.Contains(t, appErr.Details, "name")
	assert.Contains(t, appErr.Details, "text")

	_, err = svc.CreatePrompt(ctx, CreatePromptInput{Name: "dup", Text: "a"})
	require.NoError(t, err)
	_, err = svc.CreatePrompt(ctx, CreatePromptInput{Name: "dup", Text: "b"})
	requireKind(t, err, apperrors.KindValidation)

	_, err = svc.CreateVersion(ctx, 999, PromptVersionInput{Text: "x"})
	requireKind(t, err, apperrors.KindNotFound)

	_, err = svc.ListVersions(ctx, 999)
	requireKind(t, err, apperrors.KindNotFound)

	_, err = svc.UpdatePrompt(ctx, 999, UpdatePromptInput{Name: "x"})
	requireKind(t, err, apperrors.KindNotFound)

	requireKind(t, svc.DeletePrompt(ctx, 999), apperrors.KindNotFound)
}

func TestPromptServiceUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewPromptService(newTestStore(t), nopLogger)

	detail, err := svc.CreatePrompt(ctx, CreatePromptInput{Name: "old", Text: "t"})
	require.NoError(t, err)

	updated, err := svc.UpdatePrompt(ctx, detail.ID, UpdatePromptInput{Name: "new", Description: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Name)
	assert.Equal(t, "renamed", updated.Description)
	assert.Len(t, updated.Versions, 1, "renaming does not create a version")
}
