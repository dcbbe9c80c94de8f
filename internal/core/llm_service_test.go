package core

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestResponseText(t *testing.T) {
	assert.Empty(t, responseText(nil))
	assert.Empty(t, responseText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text(" Lunch with "),
				genai.Blob{MIMEType: "audio/webm", Data: []byte{1}},
				genai.Text("Sam \n"),
			}},
		}},
	}
	assert.Equal(t, "Lunch with Sam", responseText(resp))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 10))

	long := "a" + strings.Repeat("予定", 1000)
	cut := truncateRunes(long, maxTitleSourceChars)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, maxTitleSourceChars, utf8.RuneCountInString(cut))
	assert.True(t, strings.HasPrefix(long, cut))

	assert.Equal(t, "予定", truncateRunes("予定です", 2))
}
