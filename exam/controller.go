package exam

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"examprep/models"
)

var (
	ErrWrongState      = errors.New("operation not valid in current state")
	ErrExamNotFound    = errors.New("exam not found")
	ErrEmptyExam       = errors.New("exam has no questions")
	ErrSessionNotFound = errors.New("session not found")
)

// State of a Controller.
type State int

const (
	StateSelecting State = iota
	StateInProgress
	StateReviewing
)

func (s State) String() string {
	switch s {
	case StateSelecting:
		return "selecting"
	case StateInProgress:
		return "in_progress"
	case StateReviewing:
		return "reviewing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Library is the set of exams a Controller can start.
type Library interface {
	Exams() []models.ExamDefinition
	Exam(id int) (models.ExamDefinition, bool)
}

// Controller drives one user through Selecting -> InProgress -> Reviewing.
// It owns at most one Session and is not safe for concurrent use.
type Controller struct {
	lib     Library
	rng     *rand.Rand
	now     func() time.Time
	state   State
	session *Session
	report  *models.ResultReport
}

// Option configures a Controller.
type Option func(*Controller)

// WithRand sets the shuffling source. Tests pass a seeded one.
func WithRand(r *rand.Rand) Option { return func(c *Controller) { c.rng = r } }

// WithClock sets the clock used to stamp reports.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// NewController returns a Controller in the Selecting state.
func NewController(lib Library, opts ...Option) *Controller {
	c := &Controller{
		lib:   lib,
		now:   time.Now,
		state: StateSelecting,
	}
	for _, o := range opts {
		o(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Session returns the active session, or nil in Selecting.
func (c *Controller) Session() *Session { return c.session }

func (c *Controller) wrongState(op string) error {
	return fmt.Errorf("%s in %s: %w", op, c.state, ErrWrongState)
}

// AvailableExams lists what can be started, in library order.
func (c *Controller) AvailableExams() []models.ExamSummary {
	return Summarize(c.lib)
}

// Summarize lists the exams in lib as selection entries.
func Summarize(lib Library) []models.ExamSummary {
	exams := lib.Exams()
	out := make([]models.ExamSummary, 0, len(exams))
	for _, e := range exams {
		out = append(out, models.ExamSummary{ID: e.ID, Title: e.Title, QuestionCount: len(e.Questions)})
	}
	return out
}

// Start begins a fresh attempt at exam id. Any unfinished session is discarded.
func (c *Controller) Start(id int) error {
	def, ok := c.lib.Exam(id)
	if !ok {
		return fmt.Errorf("exam %d: %w", id, ErrExamNotFound)
	}
	return c.begin(def)
}

func (c *Controller) begin(def models.ExamDefinition) error {
	s, err := NewSession(def, c.rng)
	if err != nil {
		return fmt.Errorf("exam %d: %w", def.ID, err)
	}
	c.session = s
	c.report = nil
	c.state = StateInProgress
	return nil
}

// CurrentQuestionView describes the question at the current position.
func (c *Controller) CurrentQuestionView() (models.QuestionView, error) {
	if c.state != StateInProgress {
		return models.QuestionView{}, c.wrongState("view question")
	}
	return c.session.View(), nil
}

// SelectAnswer records option for the current question. Options that are not
// presented for that question are ignored.
func (c *Controller) SelectAnswer(option string) error {
	if c.state != StateInProgress {
		return c.wrongState("select answer")
	}
	c.session.SelectAnswer(option)
	return nil
}

// Advance moves forward one question, clamped at the last.
func (c *Controller) Advance() error {
	if c.state != StateInProgress {
		return c.wrongState("advance")
	}
	c.session.Advance()
	return nil
}

// Retreat moves back one question, clamped at the first.
func (c *Controller) Retreat() error {
	if c.state != StateInProgress {
		return c.wrongState("retreat")
	}
	c.session.Retreat()
	return nil
}

// Submit finishes the attempt if every question is answered. Otherwise it
// returns the unanswered count and leaves the session in progress until
// ConfirmSubmit is called.
func (c *Controller) Submit() (models.SubmitOutcome, error) {
	if c.state != StateInProgress {
		return models.SubmitOutcome{}, c.wrongState("submit")
	}
	if n := c.session.UnansweredCount(); n > 0 {
		return models.SubmitOutcome{NeedsConfirmation: true, UnansweredCount: n}, nil
	}
	report := c.finish()
	return models.SubmitOutcome{Report: &report}, nil
}

// ConfirmSubmit finishes the attempt regardless of unanswered questions.
func (c *Controller) ConfirmSubmit() (models.ResultReport, error) {
	if c.state != StateInProgress {
		return models.ResultReport{}, c.wrongState("confirm submit")
	}
	return c.finish(), nil
}

func (c *Controller) finish() models.ResultReport {
	report := c.session.Report(c.now())
	c.report = &report
	c.state = StateReviewing
	return report
}

// Report returns the result of the finished attempt.
func (c *Controller) Report() (models.ResultReport, error) {
	if c.state != StateReviewing || c.report == nil {
		return models.ResultReport{}, c.wrongState("report")
	}
	return *c.report, nil
}

// Retake restarts the reviewed exam with a new shuffle and empty answers.
func (c *Controller) Retake() error {
	if c.state != StateReviewing {
		return c.wrongState("retake")
	}
	return c.begin(c.session.Exam())
}

// BackToSelection abandons the session and returns to exam selection.
func (c *Controller) BackToSelection() error {
	c.session = nil
	c.report = nil
	c.state = StateSelecting
	return nil
}

// Snapshot returns the view state for the collaborator to render.
func (c *Controller) Snapshot() models.ControllerView {
	v := models.ControllerView{State: c.state.String()}
	if c.session != nil {
		def := c.session.Exam()
		v.ExamID = def.ID
		v.ExamTitle = def.Title
	}
	switch c.state {
	case StateInProgress:
		q := c.session.View()
		v.Question = &q
	case StateReviewing:
		if c.report != nil {
			r := *c.report
			v.Report = &r
		}
	}
	return v
}
