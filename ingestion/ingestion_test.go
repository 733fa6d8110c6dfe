package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"examprep/catalog"
	"examprep/models"
)

func TestParseTranscript_SingleBlock(t *testing.T) {
	res := ParseTranscript("1. What is 2+2?\nA. 3\nB. 4\nC. 5\nD. 6\nAnswer: B. 4", 3, "Basic IT")

	if res.Accepted != 1 || len(res.Exam.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(res.Exam.Questions))
	}
	q := res.Exam.Questions[0]
	if q.ID != 1 {
		t.Errorf("expected id 1, got %d", q.ID)
	}
	if q.Text != "What is 2+2?" {
		t.Errorf("unexpected text %q", q.Text)
	}
	wantOpts := []string{"A. 3", "B. 4", "C. 5", "D. 6"}
	if !reflect.DeepEqual(q.Options, wantOpts) {
		t.Errorf("options = %v, want %v", q.Options, wantOpts)
	}
	if q.Answer != "B. 4" {
		t.Errorf("answer = %q, want %q", q.Answer, "B. 4")
	}
	if res.Exam.ID != 3 || res.Exam.Title != "Basic IT" {
		t.Errorf("exam identity %d %q not taken from arguments", res.Exam.ID, res.Exam.Title)
	}
}

func TestParseTranscript_DropsMalformedBlocks(t *testing.T) {
	doc := strings.Join([]string{
		"Basic IT - practice set",
		"Read every question carefully.",
		"1. First valid?",
		"A. one",
		"B. two",
		"C. three",
		"D. four",
		"Answer: A. one",
		"",
		"2. Missing answer line",
		"A. one",
		"B. two",
		"C. three",
		"D. four",
		"",
		"3. Too few options",
		"A. one",
		"B. two",
		"C. three",
		"Answer: C. three",
		"",
		"4. Second valid?",
		"A. red",
		"B. green",
		"C. blue",
		"D. black",
		"Answer: D. black",
	}, "\n")

	res := ParseTranscript(doc, 1, "Mixed")
	if res.Accepted != 2 {
		t.Fatalf("expected 2 accepted, got %d", res.Accepted)
	}
	if res.Dropped != 3 { // header, missing answer, too few options
		t.Errorf("expected 3 dropped, got %d", res.Dropped)
	}
	got := res.Exam.Questions
	if got[0].Text != "First valid?" || got[1].Text != "Second valid?" {
		t.Errorf("unexpected questions %+v", got)
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("ids must be sequential without gaps, got %d and %d", got[0].ID, got[1].ID)
	}
}

func TestParseTranscript_KeepsExtraAndDuplicateOptions(t *testing.T) {
	doc := "7. Pick one\nA. a\nB. b\nB. b again\nC. c\nD. d\nAnswer: B. b again"
	res := ParseTranscript(doc, 1, "Extra")
	if res.Accepted != 1 {
		t.Fatalf("expected 1 question, got %d", res.Accepted)
	}
	want := []string{"A. a", "B. b", "B. b again", "C. c", "D. d"}
	if got := res.Exam.Questions[0].Options; !reflect.DeepEqual(got, want) {
		t.Errorf("options = %v, want %v", got, want)
	}
}

func TestParseTranscript_LineHandling(t *testing.T) {
	testCases := []struct {
		name       string
		doc        string
		wantCount  int
		wantAnswer string
	}{
		{
			name:       "indented lines and CRLF",
			doc:        "1. Q?\r\n   A. w\r\n  B. x\r\nC. y\r\nD. z\r\n   Answer:   C. y   \r\n",
			wantCount:  1,
			wantAnswer: "C. y",
		},
		{
			name:       "no-break space separators",
			doc:        "1.\u00a0Thủ đô?\nA.\u00a0Hà Nội\nB.\u00a0Huế\nC.\u00a0Đà Nẵng\nD.\u00a0Sài Gòn\nAnswer:\u00a0A.\u00a0Hà Nội",
			wantCount:  1,
			wantAnswer: "A.\u00a0Hà Nội",
		},
		{
			name:      "no-break space only after number",
			doc:       "1.\u00a0\u00a0\nA. w\nB. x\nC. y\nD. z\nAnswer: A. w",
			wantCount: 0,
		},
		{
			name:      "empty answer",
			doc:       "1. Q?\nA. w\nB. x\nC. y\nD. z\nAnswer:   ",
			wantCount: 0,
		},
		{
			name:      "no whitespace after number",
			doc:       "1.Q?\nA. w\nB. x\nC. y\nD. z\nAnswer: A. w",
			wantCount: 0,
		},
		{
			name:      "E is not an option label",
			doc:       "1. Q?\nA. w\nB. x\nC. y\nE. z\nAnswer: A. w",
			wantCount: 0,
		},
		{
			name:       "last answer line wins",
			doc:        "1. Q?\nA. w\nB. x\nC. y\nD. z\nAnswer: A. w\nAnswer: D. z",
			wantCount:  1,
			wantAnswer: "D. z",
		},
		{
			name:      "empty document",
			doc:       "   \n\n",
			wantCount: 0,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := ParseTranscript(tc.doc, 1, "T")
			if res.Accepted != tc.wantCount {
				t.Fatalf("accepted %d, want %d", res.Accepted, tc.wantCount)
			}
			if tc.wantCount > 0 && res.Exam.Questions[0].Answer != tc.wantAnswer {
				t.Errorf("answer %q, want %q", res.Exam.Questions[0].Answer, tc.wantAnswer)
			}
		})
	}
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "exam-3.txt"), 3, "Basic IT")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped ErrNotExist, got %v", err)
	}
}

func TestWriteExam_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	res := ParseTranscript("1. What is 2+2?\nA. 3\nB. 4\nC. 5\nD. 6\nAnswer: B. 4", 3, "Basic IT")

	out := filepath.Join(dir, "exam-3.json")
	if err := WriteExam(out, res.Exam); err != nil {
		t.Fatalf("WriteExam: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `"question": "What is 2+2?"`) {
		t.Errorf("output does not use the catalog field names:\n%s", data)
	}

	// Wrapped in a catalog document, the output loads through the runtime decoder.
	doc, err := catalog.Decode([]byte(`{"exams": [` + string(data) + `]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(doc.Exams[0], res.Exam) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", doc.Exams[0], res.Exam)
	}
}

func TestMergeIntoCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exams.json")

	first := models.ExamDefinition{ID: 2, Title: "Two", Questions: []models.Question{}}
	replaced, err := MergeIntoCatalog(path, first)
	if err != nil {
		t.Fatalf("merge into missing file: %v", err)
	}
	if replaced {
		t.Error("nothing to replace in a new catalog")
	}

	if _, err := MergeIntoCatalog(path, models.ExamDefinition{ID: 1, Title: "One", Questions: []models.Question{}}); err != nil {
		t.Fatalf("merge second exam: %v", err)
	}
	replaced, err = MergeIntoCatalog(path, models.ExamDefinition{ID: 2, Title: "Two v2", Questions: []models.Question{}})
	if err != nil {
		t.Fatalf("merge replacement: %v", err)
	}
	if !replaced {
		t.Error("expected exam 2 to be replaced")
	}

	doc, err := catalog.FileSource{Path: path}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch merged catalog: %v", err)
	}
	if len(doc.Exams) != 2 {
		t.Fatalf("expected 2 exams, got %d", len(doc.Exams))
	}
	if doc.Exams[0].ID != 1 || doc.Exams[1].Title != "Two v2" {
		t.Errorf("unexpected merged catalog %+v", doc.Exams)
	}
}

func TestMergeIntoCatalog_RejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exams.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := MergeIntoCatalog(path, models.ExamDefinition{ID: 1}); err == nil {
		t.Fatal("expected malformed catalog to be rejected")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "not json" {
		t.Error("a failed merge must leave the catalog untouched")
	}
}
