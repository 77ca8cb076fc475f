package repository

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptmaster/server/database"
	"github.com/promptmaster/server/models"
	"github.com/promptmaster/server/pkg"
)

// newTestDB, her test için izole bir SQLite dosyası açar ve
// gömülü migration'ları (varsayılan şablonlar dahil) uygular.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func createTestUser(t *testing.T, repo UserRepository, username, email string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=102400,t=2,p=8$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
	}
	require.NoError(t, repo.Create(context.Background(), user))
	require.NotZero(t, user.ID)

	return user
}

func TestUserRepoCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice", "alice@example.com")

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Nil(t, byID.LastLogin)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepoNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	_, err = repo.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestUserRepoUniqueViolations(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()

	createTestUser(t, repo, "alice", "alice@example.com")

	dupUsername := &models.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"}
	err := repo.Create(ctx, dupUsername)
	require.ErrorIs(t, err, pkg.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "username")

	dupEmail := &models.User{Username: "bob", Email: "alice@example.com", PasswordHash: "x"}
	err = repo.Create(ctx, dupEmail)
	require.ErrorIs(t, err, pkg.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "email")
}

func TestUserRepoUpdateLastLoginAndPassword(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice", "alice@example.com")

	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID))
	updated, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, updated.LastLogin)

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new-hash"))
	updated, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", updated.PasswordHash)

	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, 9999), pkg.ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePassword(ctx, 9999, "x"), pkg.ErrNotFound)
}

func TestTemplateRepoDefaultsSeeded(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteTemplateRepo(db.Conn)
	ctx := context.Background()

	// Anonim listeleme: migration'la gelen 3 sistem şablonu
	templates, err := repo.ListForUser(ctx, nil)
	require.NoError(t, err)
	require.Len(t, templates, 3)
	for _, tmpl := range templates {
		assert.True(t, tmpl.IsDefault)
		assert.Nil(t, tmpl.UserID)
	}
}

func TestTemplateRepoVisibility(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteTemplateRepo(db.Conn)
	ctx := context.Background()

	alice := createTestUser(t, userRepo, "alice", "alice@example.com")
	bob := createTestUser(t, userRepo, "bob", "bob@example.com")

	own := &models.Template{UserID: &alice.ID, Name: "my template", Content: "do the thing"}
	require.NoError(t, repo.Create(ctx, own))

	// Alice: 3 varsayılan + kendi şablonu
	templates, err := repo.ListForUser(ctx, &alice.ID)
	require.NoError(t, err)
	assert.Len(t, templates, 4)

	// Bob: sadece 3 varsayılan
	templates, err = repo.ListForUser(ctx, &bob.ID)
	require.NoError(t, err)
	assert.Len(t, templates, 3)

	// Bob, Alice'in şablonunu okuyamaz
	_, err = repo.GetForUser(ctx, own.ID, &bob.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	// Alice kendi şablonunu okur
	got, err := repo.GetForUser(ctx, own.ID, &alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "my template", got.Name)

	// Varsayılan şablon herkese (anonim dahil) görünür
	defaults, err := repo.ListForUser(ctx, nil)
	require.NoError(t, err)
	_, err = repo.GetForUser(ctx, defaults[0].ID, &bob.ID)
	assert.NoError(t, err)
}

func TestTemplateRepoOwnedExcludesDefaults(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteTemplateRepo(db.Conn)
	ctx := context.Background()

	alice := createTestUser(t, userRepo, "alice", "alice@example.com")

	defaults, err := repo.ListForUser(ctx, nil)
	require.NoError(t, err)

	// Varsayılan şablonlar kimseye "ait" değildir — düzenlenemez/silinemez
	_, err = repo.GetOwned(ctx, defaults[0].ID, alice.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, defaults[0].ID, alice.ID), pkg.ErrNotFound)
}

func TestTemplateRepoNameUniquePerUser(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteTemplateRepo(db.Conn)
	ctx := context.Background()

	alice := createTestUser(t, userRepo, "alice", "alice@example.com")
	bob := createTestUser(t, userRepo, "bob", "bob@example.com")

	first := &models.Template{UserID: &alice.ID, Name: "shared name", Content: "v1"}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.Template{UserID: &alice.ID, Name: "shared name", Content: "v2"}
	assert.ErrorIs(t, repo.Create(ctx, dup), pkg.ErrAlreadyExists)

	// Farklı kullanıcı aynı ismi kullanabilir
	other := &models.Template{UserID: &bob.ID, Name: "shared name", Content: "v3"}
	assert.NoError(t, repo.Create(ctx, other))
}

func TestTemplateRepoUpdateScoping(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteTemplateRepo(db.Conn)
	ctx := context.Background()

	alice := createTestUser(t, userRepo, "alice", "alice@example.com")
	bob := createTestUser(t, userRepo, "bob", "bob@example.com")

	tmpl := &models.Template{UserID: &alice.ID, Name: "original", Content: "before"}
	require.NoError(t, repo.Create(ctx, tmpl))

	// Bob, Alice'in şablonunu güncelleyemez
	hijack := &models.Template{ID: tmpl.ID, UserID: &bob.ID, Name: "stolen", Content: "after"}
	assert.ErrorIs(t, repo.Update(ctx, hijack), pkg.ErrNotFound)

	// Alice güncelleyebilir — updated_at set edilir
	tmpl.Name = "renamed"
	tmpl.Content = "after"
	require.NoError(t, repo.Update(ctx, tmpl))

	got, err := repo.GetOwned(ctx, tmpl.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.NotNil(t, got.UpdatedAt)
}

func TestHistoryRepoOrdering(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteHistoryRepo(db.Conn)
	ctx := context.Background()

	alice := createTestUser(t, userRepo, "alice", "alice@example.com")

	for _, prompt := range []string{"first", "second", "third"} {
		entry := &models.PromptHistory{
			UserID:          alice.ID,
			OriginalPrompt:  prompt,
			OptimizedPrompt: "optimized " + prompt,
			ModelUsed:       "gemini-2.5-flash",
			Temperature:     0.2,
		}
		require.NoError(t, repo.Create(ctx, entry))
	}

	entries, err := repo.ListByUser(ctx, alice.ID, 50)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Yeniden eskiye
	assert.Equal(t, "third", entries[0].OriginalPrompt)
	assert.Equal(t, "second", entries[1].OriginalPrompt)
	assert.Equal(t, "first", entries[2].OriginalPrompt)
}

func TestHistoryRepoLimitAndIsolation(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteHistoryRepo(db.Conn)
	ctx := context.Background()

	alice := createTestUser(t, userRepo, "alice", "alice@example.com")
	bob := createTestUser(t, userRepo, "bob", "bob@example.com")

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &models.PromptHistory{
			UserID: alice.ID, OriginalPrompt: "p", OptimizedPrompt: "o",
			ModelUsed: "gemini-2.5-flash", Temperature: 0.2,
		}))
	}

	entries, err := repo.ListByUser(ctx, alice.ID, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Bob'un geçmişi boş — kullanıcılar arası sızıntı yok
	entries, err = repo.ListByUser(ctx, bob.ID, 50)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResetTokenRepoConsumeOnce(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteResetTokenRepo(db.Conn)
	ctx := context.Background()

	alice := createTestUser(t, userRepo, "alice", "alice@example.com")

	token := &models.PasswordResetToken{
		UserID:    alice.ID,
		TokenHash: "abc123",
		ExpiresAt: time.Now().Add(20 * time.Minute),
	}
	require.NoError(t, repo.Create(ctx, token))

	got, err := repo.GetByHash(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.UserID)

	require.NoError(t, repo.Consume(ctx, got.ID))

	// İkinci tüketim başarısız — token tek kullanımlık
	assert.ErrorIs(t, repo.Consume(ctx, got.ID), pkg.ErrNotFound)
	_, err = repo.GetByHash(ctx, "abc123")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestResetTokenRepoDeleteForUser(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewSQLiteUserRepo(db.Conn)
	repo := NewSQLiteResetTokenRepo(db.Conn)
	ctx := context.Background()

	alice := createTestUser(t, userRepo, "alice", "alice@example.com")

	for _, hash := range []string{"h1", "h2"} {
		require.NoError(t, repo.Create(ctx, &models.PasswordResetToken{
			UserID: alice.ID, TokenHash: hash, ExpiresAt: time.Now().Add(time.Hour),
		}))
	}

	require.NoError(t, repo.DeleteForUser(ctx, alice.ID))

	_, err := repo.GetByHash(ctx, "h1")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = repo.GetByHash(ctx, "h2")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	assert.True(t, store.IsRevoked(ctx, "jti-1"))
	assert.False(t, store.IsRevoked(ctx, "jti-2"))

	// Süresi geçmiş token'ın iptali no-op — kayıt yazılmaz
	require.NoError(t, store.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute)))
	assert.False(t, store.IsRevoked(ctx, "jti-old"))
}
