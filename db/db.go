package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"examprep/models"
)

// InitDB initializes the PostgreSQL database connection pool
func InitDB(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Ping the database to verify connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL database!")
	return pool, nil
}

// CreateSchema sets up the exam catalog table.
// Questions are kept as a JSONB array in the same shape as exams.json.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS exams (
		id INT PRIMARY KEY,
		title TEXT NOT NULL,
		questions JSONB NOT NULL DEFAULT '[]'::jsonb,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}
	return nil
}

// Store reads and writes exam definitions in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Fetch loads every exam ordered by id. The runtime only ever reads.
func (s *Store) Fetch(ctx context.Context) (models.ExamCatalog, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, title, questions FROM exams ORDER BY id`)
	if err != nil {
		return models.ExamCatalog{}, fmt.Errorf("failed to query exams: %w", err)
	}
	defer rows.Close()

	doc := models.ExamCatalog{Exams: []models.ExamDefinition{}}
	for rows.Next() {
		var e models.ExamDefinition
		var questionsJSON []byte
		if err := rows.Scan(&e.ID, &e.Title, &questionsJSON); err != nil {
			return models.ExamCatalog{}, fmt.Errorf("failed to scan exam row: %w", err)
		}
		if err := json.Unmarshal(questionsJSON, &e.Questions); err != nil {
			return models.ExamCatalog{}, fmt.Errorf("malformed questions for exam %d: %w", e.ID, err)
		}
		doc.Exams = append(doc.Exams, e)
	}
	if err := rows.Err(); err != nil {
		return models.ExamCatalog{}, fmt.Errorf("failed to iterate exams: %w", err)
	}
	return doc, nil
}

// UpsertExam inserts or replaces an exam by id. Used by the converter.
func (s *Store) UpsertExam(ctx context.Context, e models.ExamDefinition) error {
	questions := e.Questions
	if questions == nil {
		questions = []models.Question{}
	}
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions for exam %d: %w", e.ID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO exams (id, title, questions, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			questions = EXCLUDED.questions,
			updated_at = EXCLUDED.updated_at
	`, e.ID, e.Title, questionsJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert exam %d: %w", e.ID, err)
	}
	return nil
}
