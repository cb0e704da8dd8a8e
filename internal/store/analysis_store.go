package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dprayogo/nutrisnap/internal/domain"
)

type AnalysisStore struct {
	db *sql.DB
}

func NewAnalysisStore(db *sql.DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

func (s *AnalysisStore) Create(ctx context.Context, modality domain.Modality, mediaKey, mediaMIME, foodListing, report string) (*domain.Analysis, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (modality, media_key, media_mime, food_listing, report) VALUES (?, ?, ?, ?, ?)
	`, string(modality), mediaKey, mediaMIME, foodListing, report)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *AnalysisStore) GetByID(ctx context.Context, id int64) (*domain.Analysis, error) {
	analysis := &domain.Analysis{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, modality, media_key, media_mime, food_listing, report, created_at FROM analyses WHERE id = ?
	`, id).Scan(&analysis.ID, &analysis.Modality, &analysis.MediaKey, &analysis.MediaMIME,
		&analysis.FoodListing, &analysis.Report, &analysis.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	return analysis, nil
}

// List returns all analyses, newest first.
func (s *AnalysisStore) List(ctx context.Context) ([]*domain.Analysis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, modality, media_key, media_mime, food_listing, report, created_at FROM analyses
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var analyses []*domain.Analysis
	for rows.Next() {
		analysis := &domain.Analysis{}
		if err := rows.Scan(&analysis.ID, &analysis.Modality, &analysis.MediaKey, &analysis.MediaMIME,
			&analysis.FoodListing, &analysis.Report, &analysis.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, analysis)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}

	return analyses, nil
}

func (s *AnalysisStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM analyses WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("analysis not found")
	}

	return nil
}
