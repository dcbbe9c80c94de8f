package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptSeed is one prompt definition in a seed file.
type PromptSeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Text        string `yaml:"text"`
}

type promptSeedFile struct {
	Prompts []PromptSeed `yaml:"prompts"`
}

// SeedResult counts what a seed run changed.
type SeedResult struct {
	Created   int
	Versioned int
	Unchanged int
}

// SeedPromptsFromFile loads prompt definitions from a YAML file.
func (s *SQLiteStore) SeedPromptsFromFile(ctx context.Context, filePath string) (SeedResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return SeedResult{}, fmt.Errorf("failed to open seed file %s: %w", filePath, err)
	}
	defer f.Close()
	return s.SeedPrompts(ctx, f)
}

// SeedPrompts creates prompts that do not exist yet and appends a new version
// to existing ones whose latest text differs from the seed. Re-running the
// same file is a no-op.
func (s *SQLiteStore) SeedPrompts(ctx context.Context, r io.Reader) (SeedResult, error) {
	var file promptSeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return SeedResult{}, fmt.Errorf("failed to decode seed file: %w", err)
	}

	var result SeedResult
	for i, seed := range file.Prompts {
		name := strings.TrimSpace(seed.Name)
		text := strings.TrimSpace(seed.Text)
		if name == "" || text == "" {
			return result, fmt.Errorf("seed entry %d: name and text are required", i+1)
		}

		existing, err := s.GetPromptByName(ctx, name)
		if err != nil {
			return result, err
		}
		if existing == nil {
			p := &Prompt{Name: name, Description: strings.TrimSpace(seed.Description)}
			if _, err := s.CreatePrompt(ctx, p, text); err != nil {
				return result, fmt.Errorf("seed entry %d (%s): %w", i+1, name, err)
			}
			result.Created++
			continue
		}

		latest, err := s.LatestPromptVersion(ctx, existing.ID)
		if err != nil {
			return result, err
		}
		if latest != nil && latest.Text == text {
			result.Unchanged++
			continue
		}
		if _, err := s.CreatePromptVersion(ctx, existing.ID, text); err != nil {
			return result, fmt.Errorf("seed entry %d (%s): %w", i+1, name, err)
		}
		result.Versioned++
	}
	return result, nil
}
