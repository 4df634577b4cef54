package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/zakolko/zakolko/internal/models"
)

// FileName is the database file inside the data directory
const FileName = "zakolko.db"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS predictions (
	id         TEXT PRIMARY KEY,
	model_id   TEXT NOT NULL,
	features   TEXT NOT NULL,
	prediction INTEGER NOT NULL,
	created_at TEXT NOT NULL
)`,
	listingsSchema,
}

// Store keeps served predictions and collected listings in a SQLite database
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create journal schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Record stores one prediction and returns the saved record
func (s *Store) Record(modelID string, features models.FormPayload, prediction int64) (*models.PredictionRecord, error) {
	data, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal features: %w", err)
	}

	rec := &models.PredictionRecord{
		ID:         uuid.New().String(),
		ModelID:    modelID,
		Features:   features,
		Prediction: prediction,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	_, err = s.db.Exec(
		"INSERT INTO predictions (id, model_id, features, prediction, created_at) VALUES (?, ?, ?, ?, ?)",
		rec.ID, rec.ModelID, string(data), rec.Prediction, rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert prediction: %w", err)
	}

	return rec, nil
}

// Recent returns up to limit records, newest first
func (s *Store) Recent(limit int) ([]*models.PredictionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		"SELECT id, model_id, features, prediction, created_at FROM predictions ORDER BY rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	records := []*models.PredictionRecord{}
	for rows.Next() {
		var (
			rec      models.PredictionRecord
			features string
		)
		if err := rows.Scan(&rec.ID, &rec.ModelID, &features, &rec.Prediction, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		if err := json.Unmarshal([]byte(features), &rec.Features); err != nil {
			return nil, fmt.Errorf("failed to parse features of %s: %w", rec.ID, err)
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// Count returns the number of journaled predictions
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT count(*) FROM predictions").Scan(&n)
	return n, err
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
