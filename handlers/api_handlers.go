package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"examprep/catalog"
	"examprep/exam"
	"examprep/middleware"
	"examprep/models"
)

// SessionSettings configures the token issued to new browser sessions.
type SessionSettings struct {
	SigningKey string
	Issuer     string
	TTL        time.Duration
}

// respondError maps engine errors onto status codes. state is the
// controller state at the time of the failed call, if known.
func respondError(c *gin.Context, err error, state string) {
	switch {
	case errors.Is(err, exam.ErrWrongState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "state": state})
	case errors.Is(err, exam.ErrExamNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, exam.ErrEmptyExam):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, exam.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or expired"})
	default:
		log.Printf("Unexpected session error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// withController runs fn on the caller's Controller and returns the view
// state afterwards, whether or not fn failed.
func withController(c *gin.Context, reg *exam.Registry, fn func(*exam.Controller) error) (models.ControllerView, error) {
	var view models.ControllerView
	err := reg.With(c.GetString(middleware.SessionIDKey), func(ctrl *exam.Controller) error {
		ferr := fn(ctrl)
		view = ctrl.Snapshot()
		return ferr
	})
	return view, err
}

// sessionOp is the common shape of the state-changing endpoints: run the
// operation and reply with the new view state.
func sessionOp(reg *exam.Registry, op func(*exam.Controller) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := withController(c, reg, op)
		if err != nil {
			respondError(c, err, view.State)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// ListExams lists the exams available for selection.
// GET /api/v1/exams
func ListExams(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := cat.Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Exam data failed to load", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, exam.Summarize(cat))
	}
}

// CreateSession registers a new Controller and returns its signed token.
// The token is also set as a cookie for same-origin browser clients.
// POST /api/v1/sessions
func CreateSession(reg *exam.Registry, settings SessionSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := reg.Create()
		token, expiresAt, err := middleware.IssueSessionToken(settings.SigningKey, settings.Issuer, id, settings.TTL)
		if err != nil {
			reg.Delete(id)
			log.Printf("Error issuing session token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, token, int(settings.TTL.Seconds()), "/", "", false, true)
		c.JSON(http.StatusCreated, models.SessionCreateResponse{
			SessionID: id,
			Token:     token,
			ExpiresAt: expiresAt,
		})
	}
}

// GetSession returns the current view state.
// GET /api/v1/session
func GetSession(reg *exam.Registry) gin.HandlerFunc {
	return sessionOp(reg, func(*exam.Controller) error { return nil })
}

// DeleteSession drops the caller's Controller.
// DELETE /api/v1/session
func DeleteSession(reg *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		reg.Delete(c.GetString(middleware.SessionIDKey))
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
		c.Status(http.StatusNoContent)
	}
}

// StartExam begins an attempt at the requested exam.
// POST /api/v1/session/start
func StartExam(reg *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.StartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		view, err := withController(c, reg, func(ctrl *exam.Controller) error {
			return ctrl.Start(*req.ExamID)
		})
		if err != nil {
			respondError(c, err, view.State)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// CurrentQuestion returns the question at the current position.
// GET /api/v1/session/question
func CurrentQuestion(reg *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q models.QuestionView
		view, err := withController(c, reg, func(ctrl *exam.Controller) error {
			var err error
			q, err = ctrl.CurrentQuestionView()
			return err
		})
		if err != nil {
			respondError(c, err, view.State)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

// SelectAnswer records an option for the current question.
// POST /api/v1/session/answer
func SelectAnswer(reg *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnswerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		view, err := withController(c, reg, func(ctrl *exam.Controller) error {
			return ctrl.SelectAnswer(req.Option)
		})
		if err != nil {
			respondError(c, err, view.State)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// Advance moves to the next question.
// POST /api/v1/session/next
func Advance(reg *exam.Registry) gin.HandlerFunc {
	return sessionOp(reg, (*exam.Controller).Advance)
}

// Retreat moves to the previous question.
// POST /api/v1/session/prev
func Retreat(reg *exam.Registry) gin.HandlerFunc {
	return sessionOp(reg, (*exam.Controller).Retreat)
}

// Submit finishes the attempt, or asks for confirmation when questions are unanswered.
// POST /api/v1/session/submit
func Submit(reg *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var out models.SubmitOutcome
		view, err := withController(c, reg, func(ctrl *exam.Controller) error {
			var err error
			out, err = ctrl.Submit()
			return err
		})
		if err != nil {
			respondError(c, err, view.State)
			return
		}
		c.JSON(http.StatusOK, models.SubmitResponse{Outcome: out, Session: view})
	}
}

// ConfirmSubmit finishes the attempt with unanswered questions counted wrong.
// POST /api/v1/session/confirm
func ConfirmSubmit(reg *exam.Registry) gin.HandlerFunc {
	return sessionOp(reg, func(ctrl *exam.Controller) error {
		_, err := ctrl.ConfirmSubmit()
		return err
	})
}

// GetReport returns the result of the finished attempt.
// GET /api/v1/session/report
func GetReport(reg *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var report models.ResultReport
		view, err := withController(c, reg, func(ctrl *exam.Controller) error {
			var err error
			report, err = ctrl.Report()
			return err
		})
		if err != nil {
			respondError(c, err, view.State)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// Retake restarts the reviewed exam.
// POST /api/v1/session/retake
func Retake(reg *exam.Registry) gin.HandlerFunc {
	return sessionOp(reg, (*exam.Controller).Retake)
}

// BackToSelection abandons the current exam.
// POST /api/v1/session/back
func BackToSelection(reg *exam.Registry) gin.HandlerFunc {
	return sessionOp(reg, (*exam.Controller).BackToSelection)
}
