package services

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptmaster/server/database"
	"github.com/promptmaster/server/models"
	"github.com/promptmaster/server/pkg"
	"github.com/promptmaster/server/repository"
)

func newTemplateTestEnv(t *testing.T) (TemplateService, repository.UserRepository) {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewTemplateService(repository.NewSQLiteTemplateRepo(db.Conn)),
		repository.NewSQLiteUserRepo(db.Conn)
}

func TestTemplatePartialUpdate(t *testing.T) {
	svc, userRepo := newTemplateTestEnv(t)
	ctx := context.Background()

	alice := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, userRepo.Create(ctx, alice))

	desc := "original description"
	created, err := svc.Create(ctx, alice.ID, &models.CreateTemplateRequest{
		Name:        "my template",
		Description: &desc,
		Content:     "original content",
	})
	require.NoError(t, err)

	// Sadece content gönderilir — name ve description korunur
	newContent := "updated content"
	updated, err := svc.Update(ctx, created.ID, alice.ID, &models.UpdateTemplateRequest{
		Content: &newContent,
	})
	require.NoError(t, err)

	assert.Equal(t, "my template", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "original description", *updated.Description)
	assert.Equal(t, "updated content", updated.Content)
	assert.NotNil(t, updated.UpdatedAt)
}

func TestTemplateUpdateValidation(t *testing.T) {
	svc, userRepo := newTemplateTestEnv(t)
	ctx := context.Background()

	alice := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, userRepo.Create(ctx, alice))

	created, err := svc.Create(ctx, alice.ID, &models.CreateTemplateRequest{
		Name: "my template", Content: "content",
	})
	require.NoError(t, err)

	empty := "   "
	_, err = svc.Update(ctx, created.ID, alice.ID, &models.UpdateTemplateRequest{Content: &empty})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestTemplateDefaultReadOnly(t *testing.T) {
	svc, userRepo := newTemplateTestEnv(t)
	ctx := context.Background()

	alice := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, userRepo.Create(ctx, alice))

	defaults, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.NotEmpty(t, defaults)

	name := "hijacked"
	_, err = svc.Update(ctx, defaults[0].ID, alice.ID, &models.UpdateTemplateRequest{Name: &name})
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, defaults[0].ID, alice.ID), pkg.ErrNotFound)
}
