package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"examprep/models"
)

const sampleDoc = `{
    "exams": [
        {
            "id": 3,
            "title": "Basic IT",
            "questions": [
                {"id": 1, "question": "What is 2+2?", "options": ["A. 3", "B. 4", "C. 5", "D. 6"], "answer": "B. 4"}
            ]
        },
        {"id": 4, "title": "Networks", "questions": []}
    ]
}`

type flakySource struct {
	fail bool
}

func (f *flakySource) Fetch(ctx context.Context) (models.ExamCatalog, error) {
	if f.fail {
		return models.ExamCatalog{}, errors.New("unreachable")
	}
	return Decode([]byte(sampleDoc))
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exams.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := FileSource{Path: path}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(doc.Exams) != 2 {
		t.Fatalf("expected 2 exams, got %d", len(doc.Exams))
	}
	q := doc.Exams[0].Questions[0]
	if q.Text != "What is 2+2?" || q.Answer != "B. 4" || len(q.Options) != 4 {
		t.Errorf("unexpected question %+v", q)
	}
}

func TestFileSource_Missing(t *testing.T) {
	_, err := FileSource{Path: filepath.Join(t.TempDir(), "nope.json")}.Fetch(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped ErrNotExist, got %v", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, doc := range []string{`{`, `[]`, `{"items": []}`} {
		if _, err := Decode([]byte(doc)); err == nil {
			t.Errorf("expected %q to be rejected", doc)
		}
	}
}

func TestHTTPSource(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/exams.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleDoc))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	doc, err := HTTPSource{URL: ts.URL + "/exams.json", Client: ts.Client()}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(doc.Exams) != 2 || doc.Exams[1].Title != "Networks" {
		t.Errorf("unexpected catalog %+v", doc)
	}

	if _, err := (HTTPSource{URL: ts.URL + "/missing.json", Client: ts.Client()}).Fetch(context.Background()); err == nil {
		t.Error("expected a 404 to be a load failure")
	}
}

func TestCatalog_LoadFailureAndRecovery(t *testing.T) {
	src := &flakySource{}
	cat := NewCatalog(src)

	if err := cat.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cat.Exams()) != 2 || cat.Err() != nil {
		t.Fatalf("expected 2 exams and no error, got %d / %v", len(cat.Exams()), cat.Err())
	}

	src.fail = true
	if err := cat.Load(context.Background()); err == nil {
		t.Fatal("expected load failure")
	}
	if len(cat.Exams()) != 0 {
		t.Errorf("failed load should leave an empty collection, got %d exams", len(cat.Exams()))
	}
	if cat.Err() == nil || cat.Status().Error == "" {
		t.Error("expected the failure to be reported")
	}
	if _, ok := cat.Exam(3); ok {
		t.Error("exam lookup should fail while the catalog is empty")
	}

	src.fail = false
	if err := cat.Load(context.Background()); err != nil {
		t.Fatalf("retry Load: %v", err)
	}
	if cat.Err() != nil {
		t.Errorf("successful retry should clear the error, got %v", cat.Err())
	}
	e, ok := cat.Exam(3)
	if !ok || e.Title != "Basic IT" {
		t.Errorf("expected exam 3 after retry, got %+v %v", e, ok)
	}
	if cat.Status().LoadedAt == nil {
		t.Error("expected LoadedAt to be set")
	}
}

type staticSource models.ExamCatalog

func (s staticSource) Fetch(context.Context) (models.ExamCatalog, error) {
	return models.ExamCatalog(s), nil
}

func TestCatalog_RejectsUnscorableQuestions(t *testing.T) {
	testCases := []struct {
		name     string
		question models.Question
	}{
		{"empty option", models.Question{ID: 1, Text: "Q?", Options: []string{"A. a", "", "C. c", "D. d"}, Answer: "A. a"}},
		{"empty answer", models.Question{ID: 1, Text: "Q?", Options: []string{"A. a", "B. b", "C. c", "D. d"}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := models.ExamCatalog{Exams: []models.ExamDefinition{{ID: 5, Title: "Bad", Questions: []models.Question{tc.question}}}}
			cat := NewCatalog(staticSource(doc))
			if err := cat.Load(context.Background()); err == nil {
				t.Fatal("expected the catalog to be rejected")
			}
			if len(cat.Exams()) != 0 || cat.Err() == nil {
				t.Errorf("rejected catalog should leave the load-error state, got %d exams / %v", len(cat.Exams()), cat.Err())
			}
		})
	}
}
