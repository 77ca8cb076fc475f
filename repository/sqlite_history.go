package repository

import (
	"context"
	"fmt"

	"github.com/promptmaster/server/database"
	"github.com/promptmaster/server/models"
)

// sqliteHistoryRepo, HistoryRepository interface'inin SQLite implementasyonu.
type sqliteHistoryRepo struct {
	db database.TxQuerier
}

// NewSQLiteHistoryRepo, constructor fonksiyonu.
func NewSQLiteHistoryRepo(db database.TxQuerier) HistoryRepository {
	return &sqliteHistoryRepo{db: db}
}

func (r *sqliteHistoryRepo) Create(ctx context.Context, entry *models.PromptHistory) error {
	query := `
		INSERT INTO prompt_history (user_id, original_prompt, optimized_prompt, template_id, model_used, temperature)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.UserID,
		entry.OriginalPrompt,
		entry.OptimizedPrompt,
		entry.TemplateID,
		entry.ModelUsed,
		entry.Temperature,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	return nil
}

func (r *sqliteHistoryRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]models.PromptHistory, error) {
	query := `
		SELECT id, user_id, original_prompt, optimized_prompt, template_id, model_used, temperature, created_at
		FROM prompt_history
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []models.PromptHistory
	for rows.Next() {
		var h models.PromptHistory
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.OriginalPrompt, &h.OptimizedPrompt,
			&h.TemplateID, &h.ModelUsed, &h.Temperature, &h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	return entries, nil
}
