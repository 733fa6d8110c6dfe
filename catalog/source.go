package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"examprep/models"
)

// Source fetches the exam catalog document.
type Source interface {
	Fetch(ctx context.Context) (models.ExamCatalog, error)
}

// FileSource reads the catalog from a local JSON file.
type FileSource struct {
	Path string
}

func (f FileSource) Fetch(ctx context.Context) (models.ExamCatalog, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return models.ExamCatalog{}, fmt.Errorf("failed to read exam catalog %s: %w", f.Path, err)
	}
	return Decode(data)
}

// HTTPSource fetches the catalog with a single GET.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (h HTTPSource) Fetch(ctx context.Context) (models.ExamCatalog, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return models.ExamCatalog{}, fmt.Errorf("failed to build catalog request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return models.ExamCatalog{}, fmt.Errorf("failed to fetch exam catalog %s: %w", h.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.ExamCatalog{}, fmt.Errorf("failed to fetch exam catalog %s: status %d", h.URL, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ExamCatalog{}, fmt.Errorf("failed to read exam catalog body: %w", err)
	}
	return Decode(data)
}

// Decode parses a { "exams": [...] } document.
func Decode(data []byte) (models.ExamCatalog, error) {
	var raw struct {
		Exams *[]models.ExamDefinition `json:"exams"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.ExamCatalog{}, fmt.Errorf("malformed exam catalog: %w", err)
	}
	if raw.Exams == nil {
		return models.ExamCatalog{}, fmt.Errorf("malformed exam catalog: missing \"exams\"")
	}
	return models.ExamCatalog{Exams: *raw.Exams}, nil
}

// Validate rejects documents the engine cannot score: an empty option would
// read as unanswered, and an empty answer could never be matched.
func Validate(doc models.ExamCatalog) error {
	for _, e := range doc.Exams {
		for _, q := range e.Questions {
			if q.Answer == "" {
				return fmt.Errorf("exam %d question %d: empty answer", e.ID, q.ID)
			}
			for _, opt := range q.Options {
				if opt == "" {
					return fmt.Errorf("exam %d question %d: empty option", e.ID, q.ID)
				}
			}
		}
	}
	return nil
}
