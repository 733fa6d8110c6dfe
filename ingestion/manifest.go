package ingestion

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"examprep/models"
)

// Publisher receives converted exams, e.g. the Postgres catalog store.
type Publisher interface {
	UpsertExam(ctx context.Context, e models.ExamDefinition) error
}

// Job describes one transcript conversion.
type Job struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	ID     int    `yaml:"id"`
	Title  string `yaml:"title"`
}

// Manifest for parsing convert.yaml
type Manifest struct {
	Catalog     string `yaml:"catalog"` // optional exams.json to merge results into
	Transcripts []Job  `yaml:"transcripts"`
}

// JobResult reports what one conversion produced.
type JobResult struct {
	Job      Job
	Output   string
	Accepted int
	Dropped  int
	Exam     models.ExamDefinition
}

// LoadManifest reads a YAML manifest. Relative paths inside it are resolved
// against the manifest's directory.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if len(m.Transcripts) == 0 {
		return Manifest{}, fmt.Errorf("manifest %s lists no transcripts", path)
	}

	base := filepath.Dir(path)
	m.Catalog = resolve(base, m.Catalog)
	for i := range m.Transcripts {
		j := &m.Transcripts[i]
		if j.Input == "" {
			return Manifest{}, fmt.Errorf("manifest %s: transcript %d has no input", path, i+1)
		}
		if j.Title == "" {
			return Manifest{}, fmt.Errorf("manifest %s: transcript %s has no title", path, j.Input)
		}
		j.Input = resolve(base, j.Input)
		j.Output = resolve(base, j.Output)
	}
	return m, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// DefaultOutput swaps the transcript's extension for .json.
func DefaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".json"
}

// RunJob converts one transcript, writes its output, and optionally merges
// and publishes it. pub may be nil.
func RunJob(ctx context.Context, j Job, catalogPath string, pub Publisher) (JobResult, error) {
	res, err := ParseFile(j.Input, j.ID, j.Title)
	if err != nil {
		return JobResult{}, err
	}
	out := j.Output
	if out == "" {
		out = DefaultOutput(j.Input)
	}
	if err := WriteExam(out, res.Exam); err != nil {
		return JobResult{}, err
	}

	if catalogPath != "" {
		replaced, err := MergeIntoCatalog(catalogPath, res.Exam)
		if err != nil {
			return JobResult{}, err
		}
		if replaced {
			log.Printf("Replaced exam %d in %s", res.Exam.ID, catalogPath)
		} else {
			log.Printf("Added exam %d to %s", res.Exam.ID, catalogPath)
		}
	}
	if pub != nil {
		if err := pub.UpsertExam(ctx, res.Exam); err != nil {
			return JobResult{}, fmt.Errorf("failed to publish exam %d: %w", res.Exam.ID, err)
		}
	}

	return JobResult{
		Job:      j,
		Output:   out,
		Accepted: res.Accepted,
		Dropped:  res.Dropped,
		Exam:     res.Exam,
	}, nil
}

// RunManifest runs every job in order and stops at the first failure,
// returning the results completed so far.
func RunManifest(ctx context.Context, m Manifest, pub Publisher) ([]JobResult, error) {
	results := make([]JobResult, 0, len(m.Transcripts))
	for _, j := range m.Transcripts {
		r, err := RunJob(ctx, j, m.Catalog, pub)
		if err != nil {
			return results, fmt.Errorf("transcript %s: %w", j.Input, err)
		}
		results = append(results, r)
	}
	return results, nil
}
