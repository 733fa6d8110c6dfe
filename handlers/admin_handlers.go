package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"

	"examprep/catalog"
	"examprep/exam"
)

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
  <link rel="stylesheet" href="/static/style.css">
</head>
<body>
  <main id="app" data-api="/api/v1">
    <h1>{{ .Title }}</h1>
    <noscript>
      <ul>
      {{- range .Exams }}
        <li>{{ .Title }} ({{ .QuestionCount }} questions)</li>
      {{- end }}
      </ul>
    </noscript>
  </main>
  <script src="/static/app.js"></script>
</body>
</html>`

const loadErrorTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
</head>
<body>
  <main>
    <h1>Exam data could not be loaded</h1>
    <p>{{ .Error }}</p>
    <form method="post" action="/api/v1/catalog/reload">
      <button type="submit">Retry</button>
    </form>
  </main>
</body>
</html>`

// NewRenderer builds the HTML shell templates.
func NewRenderer() multitemplate.Renderer {
	r := multitemplate.NewRenderer()
	r.AddFromString("index", indexTemplate)
	r.AddFromString("load_error", loadErrorTemplate)
	return r
}

// Index renders the application shell, or the load error page with a
// retry form when the exam data failed to load.
// GET /
func Index(cat *catalog.Catalog, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := cat.Err(); err != nil {
			c.HTML(http.StatusServiceUnavailable, "load_error", gin.H{
				"Title": title,
				"Error": err.Error(),
			})
			return
		}
		c.HTML(http.StatusOK, "index", gin.H{
			"Title": title,
			"Exams": exam.Summarize(cat),
		})
	}
}

// ExamsDocument serves the loaded catalog as the static data document.
// GET /exams.json
func ExamsDocument(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := cat.Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Exam data failed to load", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cat.Document())
	}
}

// CatalogStatus reports how the last load went.
// GET /api/v1/catalog
func CatalogStatus(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, cat.Status())
	}
}

// ReloadCatalog fetches the exam data again. Form posts from the load
// error page are redirected back to the shell.
// POST /api/v1/catalog/reload
func ReloadCatalog(cat *catalog.Catalog, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		err := cat.Load(ctx)

		if c.ContentType() == "application/x-www-form-urlencoded" {
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "status": cat.Status()})
			return
		}
		c.JSON(http.StatusOK, cat.Status())
	}
}
