package catalog

import (
	"context"
	"log"
	"sync"
	"time"

	"examprep/models"
)

// Catalog holds the exams loaded from a Source. After a failed load it holds
// no exams and reports the failure through Err until a later load succeeds.
type Catalog struct {
	src Source

	mu       sync.RWMutex
	exams    []models.ExamDefinition
	err      error
	loadedAt time.Time
}

func NewCatalog(src Source) *Catalog {
	return &Catalog{src: src}
}

// Load fetches the catalog from the source, replacing what is held.
func (c *Catalog) Load(ctx context.Context) error {
	doc, err := c.src.Fetch(ctx)
	if err == nil {
		err = Validate(doc)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.exams = nil
		c.err = err
		log.Printf("Error loading exam catalog: %v", err)
		return err
	}
	c.exams = doc.Exams
	c.err = nil
	c.loadedAt = time.Now()
	log.Printf("Loaded %d exams", len(doc.Exams))
	return nil
}

// Exams returns the loaded exams in document order.
func (c *Catalog) Exams() []models.ExamDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ExamDefinition, len(c.exams))
	copy(out, c.exams)
	return out
}

// Exam looks up an exam by id.
func (c *Catalog) Exam(id int) (models.ExamDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.exams {
		if e.ID == id {
			return e, true
		}
	}
	return models.ExamDefinition{}, false
}

// Err returns the last load failure, or nil.
func (c *Catalog) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Status summarizes the load state.
func (c *Catalog) Status() models.CatalogStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := models.CatalogStatus{ExamCount: len(c.exams)}
	if !c.loadedAt.IsZero() {
		t := c.loadedAt
		st.LoadedAt = &t
	}
	if c.err != nil {
		st.Error = c.err.Error()
	}
	return st
}

// Document returns the loaded exams as a catalog document.
func (c *Catalog) Document() models.ExamCatalog {
	return models.ExamCatalog{Exams: c.Exams()}
}
