package models

import (
	"time"
)

// Unanswered marks a question slot with no recorded selection.
// Loaded catalogs never hold an empty option or answer (catalog.Validate),
// so it can neither be selected nor score as correct.
const Unanswered = ""

// Question struct represents one multiple-choice question.
// Answer holds the full text of the correct option, label prefix included ("B. 4").
type Question struct {
	ID      int      `json:"id"`
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// ExamDefinition struct represents a named, ordered collection of questions
type ExamDefinition struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// ExamCatalog is the runtime data document: { "exams": [...] }
type ExamCatalog struct {
	Exams []ExamDefinition `json:"exams"`
}

// ExamSummary is the exam-selection entry shown to the user
type ExamSummary struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"question_count"`
}

// QuestionView is what the rendering collaborator needs to draw the current question
type QuestionView struct {
	Index            int      `json:"index"` // zero-based position in the shuffled order
	Total            int      `json:"total"`
	Text             string   `json:"text"`
	PresentedOptions []string `json:"presented_options"`
	SelectedOption   string   `json:"selected_option"`
	AnsweredCount    int      `json:"answered_count"`
	IsFirst          bool     `json:"is_first"`
	IsLast           bool     `json:"is_last"`
}

// QuestionDetail provides per-question results for the review screen
type QuestionDetail struct {
	QuestionText     string   `json:"question_text"`
	UserAnswer       string   `json:"user_answer"`
	Answered         bool     `json:"answered"`
	CorrectAnswer    string   `json:"correct_answer"`
	IsCorrect        bool     `json:"is_correct"`
	PresentedOptions []string `json:"presented_options"`
}

// ResultReport is the computed outcome of a completed session
type ResultReport struct {
	ExamID            int              `json:"exam_id"`
	ExamTitle         string           `json:"exam_title"`
	CorrectCount      int              `json:"correct_count"`
	TotalCount        int              `json:"total_count"`
	Percentage        int              `json:"percentage"`
	Tier              string           `json:"tier"` // excellent, good or poor
	PerQuestionDetail []QuestionDetail `json:"per_question_detail"`
	SubmittedAt       time.Time        `json:"submitted_at"`
}

// SubmitOutcome is returned by submit: either a confirmation request or the final report
type SubmitOutcome struct {
	NeedsConfirmation bool          `json:"needs_confirmation"`
	UnansweredCount   int           `json:"unanswered_count"`
	Report            *ResultReport `json:"report,omitempty"`
}

// ControllerView is the full view state returned after every session operation
type ControllerView struct {
	State     string        `json:"state"`
	ExamID    int           `json:"exam_id,omitempty"`
	ExamTitle string        `json:"exam_title,omitempty"`
	Question  *QuestionView `json:"question,omitempty"`
	Report    *ResultReport `json:"report,omitempty"`
}

// SubmitResponse pairs the submit outcome with the resulting view state
type SubmitResponse struct {
	Outcome SubmitOutcome  `json:"outcome"`
	Session ControllerView `json:"session"`
}

// SessionCreateResponse for creating a browser session
type SessionCreateResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StartRequest for starting an exam
type StartRequest struct {
	ExamID *int `json:"exam_id" binding:"required"` // pointer so that exam 0 is not read as missing
}

// AnswerRequest for selecting an option on the current question
type AnswerRequest struct {
	Option string `json:"option" binding:"required"`
}

// CatalogStatus reports the state of the exam data load
type CatalogStatus struct {
	ExamCount int        `json:"exam_count"`
	LoadedAt  *time.Time `json:"loaded_at"`
	Error     string     `json:"error,omitempty"`
}
