package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"examprep/models"
	"examprep/utils"
)

const (
	answerPrefix = "Answer:"
	minOptions   = 4
)

var (
	// A block starts wherever a new line begins with "<n>."
	blockStartPattern = regexp.MustCompile(`\n\d+\.`)
	// \p{Zs} also accepts the no-break spaces pasted from word processors.
	questionPattern   = regexp.MustCompile(`^\d+\.[\s\p{Zs}]+(.+)$`)
	optionPattern     = regexp.MustCompile(`^[A-D]\.[\s\p{Zs}]+\S`)
)

// ParseResult is the converted exam plus counts for the operator.
type ParseResult struct {
	Exam     models.ExamDefinition
	Blocks   int // non-empty blocks examined
	Accepted int
	Dropped  int
}

// ParseTranscript converts a plain-text transcript into an exam definition.
// Blocks that are not questions, or lack text, four options, or an answer,
// are dropped without error. Accepted questions are numbered from 1.
func ParseTranscript(text string, id int, title string) ParseResult {
	res := ParseResult{
		Exam: models.ExamDefinition{ID: id, Title: title, Questions: []models.Question{}},
	}
	for _, block := range splitBlocks(text) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		res.Blocks++
		q, ok := parseBlock(block)
		if !ok {
			res.Dropped++
			continue
		}
		q.ID = len(res.Exam.Questions) + 1
		res.Exam.Questions = append(res.Exam.Questions, q)
	}
	res.Accepted = len(res.Exam.Questions)
	return res
}

// splitBlocks cuts text right after each newline that precedes a question
// number, so the numbered line opens the following block.
func splitBlocks(text string) []string {
	var blocks []string
	start := 0
	for _, loc := range blockStartPattern.FindAllStringIndex(text, -1) {
		cut := loc[0] + 1
		blocks = append(blocks, text[start:cut])
		start = cut
	}
	return append(blocks, text[start:])
}

func parseBlock(block string) (models.Question, bool) {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return models.Question{}, false
	}

	m := questionPattern.FindStringSubmatch(lines[0])
	if m == nil {
		return models.Question{}, false
	}
	q := models.Question{Text: strings.TrimSpace(m[1]), Options: []string{}}

	for _, line := range lines[1:] {
		switch {
		case optionPattern.MatchString(line):
			q.Options = append(q.Options, line)
		case strings.HasPrefix(line, answerPrefix):
			q.Answer = strings.TrimSpace(strings.TrimPrefix(line, answerPrefix))
		}
	}

	if q.Text == "" || len(q.Options) < minOptions || q.Answer == "" {
		return models.Question{}, false
	}
	return q, true
}

// ParseFile reads and converts one transcript file.
func ParseFile(path string, id int, title string) (ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ParseResult{}, fmt.Errorf("failed to read transcript %s: %w", path, err)
	}
	return ParseTranscript(string(data), id, title), nil
}

// WriteExam writes one exam document, replacing path atomically.
func WriteExam(path string, e models.ExamDefinition) error {
	data, err := json.MarshalIndent(e, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal exam %d: %w", e.ID, err)
	}
	if err := utils.WriteFileAtomic(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
