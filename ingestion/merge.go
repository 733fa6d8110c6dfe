package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"examprep/catalog"
	"examprep/models"
	"examprep/utils"
)

// MergeIntoCatalog puts e into the catalog document at path, replacing any
// exam with the same id. A missing catalog file is treated as empty.
func MergeIntoCatalog(path string, e models.ExamDefinition) (replaced bool, err error) {
	doc := models.ExamCatalog{Exams: []models.ExamDefinition{}}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		doc, err = catalog.Decode(data)
		if err != nil {
			return false, fmt.Errorf("cannot merge into %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return false, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	for i := range doc.Exams {
		if doc.Exams[i].ID == e.ID {
			doc.Exams[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Exams = append(doc.Exams, e)
	}
	sort.SliceStable(doc.Exams, func(i, j int) bool { return doc.Exams[i].ID < doc.Exams[j].ID })

	out, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return false, fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := utils.WriteFileAtomic(path, append(out, '\n'), 0644); err != nil {
		return false, fmt.Errorf("failed to write catalog %s: %w", path, err)
	}
	return replaced, nil
}
