package exam

import (
	"math/rand"
	"time"

	"examprep/models"
	"examprep/utils"
)

// Session is one attempt at an exam: a shuffled private copy of the questions,
// the current position, and one answer slot per question.
type Session struct {
	exam      models.ExamDefinition
	questions []models.Question // shuffled order, each with shuffled Options
	answers   []string
	index     int
}

// NewSession shuffles the question order and, independently, every question's
// options. The definition passed in is never modified.
func NewSession(def models.ExamDefinition, r *rand.Rand) (*Session, error) {
	if len(def.Questions) == 0 {
		return nil, ErrEmptyExam
	}
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	questions := make([]models.Question, len(def.Questions))
	copy(questions, def.Questions)
	r.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	for i := range questions {
		opts := utils.CopyStrings(questions[i].Options)
		r.Shuffle(len(opts), func(a, b int) {
			opts[a], opts[b] = opts[b], opts[a]
		})
		questions[i].Options = opts
	}

	answers := make([]string, len(questions))
	for i := range answers {
		answers[i] = models.Unanswered
	}

	return &Session{
		exam:      def,
		questions: questions,
		answers:   answers,
	}, nil
}

// Exam returns the definition this session was started from.
func (s *Session) Exam() models.ExamDefinition { return s.exam }

// Index returns the zero-based position of the current question.
func (s *Session) Index() int { return s.index }

// Len returns the number of questions in the session.
func (s *Session) Len() int { return len(s.questions) }

// Questions returns the presented order. The slice is a copy.
func (s *Session) Questions() []models.Question {
	out := make([]models.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Answers returns the recorded answer per position. The slice is a copy.
func (s *Session) Answers() []string {
	return utils.CopyStrings(s.answers)
}

// SelectAnswer records option for the current question, replacing any earlier
// choice. It reports false and records nothing if option is not one of the
// presented options.
func (s *Session) SelectAnswer(option string) bool {
	if !utils.ContainsString(s.questions[s.index].Options, option) {
		return false
	}
	s.answers[s.index] = option
	return true
}

// Advance moves to the next question; it stays put on the last one.
func (s *Session) Advance() {
	if s.index < len(s.questions)-1 {
		s.index++
	}
}

// Retreat moves to the previous question; it stays put on the first one.
func (s *Session) Retreat() {
	if s.index > 0 {
		s.index--
	}
}

// AnsweredCount returns how many slots hold a selection.
func (s *Session) AnsweredCount() int {
	n := 0
	for _, a := range s.answers {
		if a != models.Unanswered {
			n++
		}
	}
	return n
}

// UnansweredCount returns how many slots are still empty.
func (s *Session) UnansweredCount() int {
	return len(s.answers) - s.AnsweredCount()
}

// View describes the current question for rendering.
func (s *Session) View() models.QuestionView {
	q := s.questions[s.index]
	return models.QuestionView{
		Index:            s.index,
		Total:            len(s.questions),
		Text:             q.Text,
		PresentedOptions: utils.CopyStrings(q.Options),
		SelectedOption:   s.answers[s.index],
		AnsweredCount:    s.AnsweredCount(),
		IsFirst:          s.index == 0,
		IsLast:           s.index == len(s.questions)-1,
	}
}

// Report scores the session as it stands.
func (s *Session) Report(now time.Time) models.ResultReport {
	report := Score(s.questions, s.answers)
	report.ExamID = s.exam.ID
	report.ExamTitle = s.exam.Title
	report.SubmittedAt = now
	return report
}
