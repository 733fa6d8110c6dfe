package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"examprep/catalog"
	"examprep/exam"
	"examprep/middleware"
)

// Deps are what the routes need from the host.
type Deps struct {
	Catalog     *catalog.Catalog
	Registry    *exam.Registry
	Session     SessionSettings
	LoadTimeout time.Duration
	Title       string
}

// RegisterRoutes mounts the shell, the data document and the /api/v1 routes.
// The router must have an HTML renderer from NewRenderer.
func RegisterRoutes(router *gin.Engine, d Deps) {
	router.GET("/", Index(d.Catalog, d.Title))
	router.GET("/exams.json", ExamsDocument(d.Catalog))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/exams", ListExams(d.Catalog))
		apiV1.GET("/catalog", CatalogStatus(d.Catalog))
		apiV1.POST("/catalog/reload", ReloadCatalog(d.Catalog, d.LoadTimeout))
		apiV1.POST("/sessions", CreateSession(d.Registry, d.Session))
	}

	session := apiV1.Group("/session")
	session.Use(middleware.SessionMiddleware(d.Session.SigningKey, d.Session.Issuer))
	{
		session.GET("", GetSession(d.Registry))
		session.DELETE("", DeleteSession(d.Registry))
		session.POST("/start", StartExam(d.Registry))
		session.GET("/question", CurrentQuestion(d.Registry))
		session.POST("/answer", SelectAnswer(d.Registry))
		session.POST("/next", Advance(d.Registry))
		session.POST("/prev", Retreat(d.Registry))
		session.POST("/submit", Submit(d.Registry))
		session.POST("/confirm", ConfirmSubmit(d.Registry))
		session.GET("/report", GetReport(d.Registry))
		session.POST("/retake", Retake(d.Registry))
		session.POST("/back", BackToSelection(d.Registry))
	}
}
