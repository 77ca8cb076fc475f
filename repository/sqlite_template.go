package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/promptmaster/server/database"
	"github.com/promptmaster/server/models"
	"github.com/promptmaster/server/pkg"
)

// sqliteTemplateRepo, TemplateRepository interface'inin SQLite implementasyonu.
type sqliteTemplateRepo struct {
	db database.TxQuerier
}

// NewSQLiteTemplateRepo, constructor fonksiyonu.
func NewSQLiteTemplateRepo(db database.TxQuerier) TemplateRepository {
	return &sqliteTemplateRepo{db: db}
}

const templateColumns = `id, user_id, name, description, content, is_default, category, created_at, updated_at`

func (r *sqliteTemplateRepo) ListForUser(ctx context.Context, userID *int64) ([]models.Template, error) {
	// Anonim kullanıcı sadece sistem varsayılanlarını görür.
	// Giriş yapmış kullanıcı: kendi şablonları + varsayılanlar.
	query := `
		SELECT ` + templateColumns + `
		FROM templates
		WHERE is_default = 1 OR user_id = ?
		ORDER BY is_default DESC, name`

	var uid any
	if userID != nil {
		uid = *userID
	}

	rows, err := r.db.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close() // Önemli: rows'u kapatmayı ASLA unutma — aksi halde bağlantı sızar (leak)

	var templates []models.Template
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Name, &t.Description, &t.Content,
			&t.IsDefault, &t.Category, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan template row: %w", err)
		}
		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template rows: %w", err)
	}

	return templates, nil
}

func (r *sqliteTemplateRepo) GetForUser(ctx context.Context, id int64, userID *int64) (*models.Template, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM templates
		WHERE id = ? AND (is_default = 1 OR user_id = ?)`

	var uid any
	if userID != nil {
		uid = *userID
	}

	tmpl := &models.Template{}
	err := r.db.QueryRowContext(ctx, query, id, uid).Scan(
		&tmpl.ID, &tmpl.UserID, &tmpl.Name, &tmpl.Description, &tmpl.Content,
		&tmpl.IsDefault, &tmpl.Category, &tmpl.CreatedAt, &tmpl.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return tmpl, nil
}

func (r *sqliteTemplateRepo) GetOwned(ctx context.Context, id int64, userID int64) (*models.Template, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM templates
		WHERE id = ? AND user_id = ?`

	tmpl := &models.Template{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&tmpl.ID, &tmpl.UserID, &tmpl.Name, &tmpl.Description, &tmpl.Content,
		&tmpl.IsDefault, &tmpl.Category, &tmpl.CreatedAt, &tmpl.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get owned template: %w", err)
	}

	return tmpl, nil
}

func (r *sqliteTemplateRepo) Create(ctx context.Context, tmpl *models.Template) error {
	query := `
		INSERT INTO templates (user_id, name, description, content, is_default, category)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		tmpl.UserID,
		tmpl.Name,
		tmpl.Description,
		tmpl.Content,
		tmpl.IsDefault,
		tmpl.Category,
	).Scan(&tmpl.ID, &tmpl.CreatedAt)

	if err != nil {
		// Aynı kullanıcı aynı isimde ikinci şablon oluşturamaz
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: template name already in use", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create template: %w", err)
	}

	return nil
}

func (r *sqliteTemplateRepo) Update(ctx context.Context, tmpl *models.Template) error {
	// user_id koşulu: başkasının şablonunu (ve varsayılanları) güncellemeyi engeller
	query := `
		UPDATE templates
		SET name = ?, description = ?, content = ?, category = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		tmpl.Name, tmpl.Description, tmpl.Content, tmpl.Category,
		tmpl.ID, tmpl.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: template name already in use", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to update template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func (r *sqliteTemplateRepo) Delete(ctx context.Context, id int64, userID int64) error {
	query := `DELETE FROM templates WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}
