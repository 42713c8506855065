package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/persistence"
)

func newSQLiteRepo(t *testing.T) IssueRepository {
	t.Helper()
	ctx := context.Background()
	db, err := persistence.NewSQLite(ctx, config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "issues.db")}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, persistence.RunSQLiteMigrations(ctx, db.DB, zap.NewNop()))
	t.Cleanup(db.Close)
	return NewSQLiteIssueRepository(db.DB)
}

func newPostgresRepo(t *testing.T) IssueRepository {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))
	return NewPostgresIssueRepository(pool)
}

func newCachedRepo(t *testing.T) IssueRepository {
	t.Helper()
	var client *redis.Client
	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		client = redis.NewClient(&redis.Options{Addr: addr})
		t.Cleanup(func() { _ = client.Close() })
		require.NoError(t, client.Ping(context.Background()).Err())
	} else {
		_, client = newMiniredisClient(t)
	}
	return NewCachedIssueRepository(NewMemoryIssueRepository(), client, time.Minute, zap.NewNop())
}

func TestIssueRepositories(t *testing.T) {
	factories := map[string]func(t *testing.T) IssueRepository{
		"memory":   func(*testing.T) IssueRepository { return NewMemoryIssueRepository() },
		"sqlite":   newSQLiteRepo,
		"postgres": newPostgresRepo,
		"cached":   newCachedRepo,
	}
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			runRepositoryContract(t, factory)
		})
	}
}

// uniqueProject keeps shared databases (postgres, redis) from leaking state across runs.
func uniqueProject(t *testing.T) string {
	return "proj-" + time.Now().Format("150405.000000000") + "-" + filepath.Base(t.Name())
}

func newIssue(project, title, createdBy string) *domain.Issue {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Issue{
		Project:   project,
		Title:     title,
		Text:      "Text",
		CreatedBy: createdBy,
		CreatedOn: now,
		UpdatedOn: now,
		Open:      true,
	}
}

func runRepositoryContract(t *testing.T, factory func(t *testing.T) IssueRepository) {
	ctx := context.Background()

	t.Run("insert assigns unique ids", func(t *testing.T) {
		repo := factory(t)
		project := uniqueProject(t)

		first := newIssue(project, "one", "alice")
		second := newIssue(project, "two", "alice")
		require.NoError(t, repo.Insert(ctx, first))
		require.NoError(t, repo.Insert(ctx, second))

		assert.NotEmpty(t, first.ID)
		assert.NotEqual(t, first.ID, second.ID)
		assert.NoError(t, repo.Ping(ctx))
	})

	t.Run("find many filters by project and fields in insertion order", func(t *testing.T) {
		repo := factory(t)
		project := uniqueProject(t)
		other := project + "-other"

		a := newIssue(project, "a", "alice")
		b := newIssue(project, "b", "bob")
		c := newIssue(project, "c", "alice")
		c.Open = false
		b.CreatedOn = b.CreatedOn.Add(-time.Hour)
		c.CreatedOn, c.UpdatedOn = a.CreatedOn, a.UpdatedOn
		d := newIssue(other, "d", "alice")
		for _, issue := range []*domain.Issue{a, b, c, d} {
			require.NoError(t, repo.Insert(ctx, issue))
		}

		all, err := repo.FindMany(ctx, IssueFilter{Project: project})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"a", "b", "c"}, titles(all))

		open, err := repo.FindMany(ctx, IssueFilter{Project: project, Open: boolPtr(true)})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, titles(open))

		openAlice, err := repo.FindMany(ctx, IssueFilter{Project: project, Open: boolPtr(true), CreatedBy: strPtr("alice")})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, titles(openAlice))

		byID, err := repo.FindMany(ctx, IssueFilter{Project: project, ID: &b.ID})
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, titles(byID))

		createdOn := b.CreatedOn
		byCreatedOn, err := repo.FindMany(ctx, IssueFilter{Project: project, CreatedOn: &createdOn})
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, titles(byCreatedOn))

		updatedOn := a.UpdatedOn
		byUpdatedOn, err := repo.FindMany(ctx, IssueFilter{Project: project, UpdatedOn: &updatedOn, CreatedBy: strPtr("alice")})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, titles(byUpdatedOn))

		none, err := repo.FindMany(ctx, IssueFilter{Project: project + "-missing"})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)

		badID, err := repo.FindMany(ctx, IssueFilter{Project: project, ID: strPtr("invalid_id")})
		require.NoError(t, err)
		assert.Empty(t, badID)
	})

	t.Run("update merges patch and reports missing ids", func(t *testing.T) {
		repo := factory(t)
		project := uniqueProject(t)

		issue := newIssue(project, "Title", "alice")
		issue.AssignedTo = "bob"
		require.NoError(t, repo.Insert(ctx, issue))

		title := "Updated Title"
		closed := false
		later := issue.CreatedOn.Add(time.Second)
		updated, err := repo.UpdateByID(ctx, issue.ID, domain.IssuePatch{Title: &title, Open: &closed}, later)
		require.NoError(t, err)
		assert.Equal(t, issue.ID, updated.ID)
		assert.Equal(t, "Updated Title", updated.Title)
		assert.Equal(t, "Text", updated.Text)
		assert.Equal(t, "bob", updated.AssignedTo)
		assert.False(t, updated.Open)
		assert.True(t, updated.UpdatedOn.Equal(later))
		assert.True(t, updated.CreatedOn.Equal(issue.CreatedOn))

		stored, err := repo.FindMany(ctx, IssueFilter{Project: project})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "Updated Title", stored[0].Title)
		assert.False(t, stored[0].Open)

		_, err = repo.UpdateByID(ctx, "invalid_id", domain.IssuePatch{Title: &title}, later)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete succeeds once", func(t *testing.T) {
		repo := factory(t)
		project := uniqueProject(t)

		issue := newIssue(project, "Title", "alice")
		require.NoError(t, repo.Insert(ctx, issue))

		require.NoError(t, repo.DeleteByID(ctx, issue.ID))
		assert.ErrorIs(t, repo.DeleteByID(ctx, issue.ID), ErrNotFound)
		assert.ErrorIs(t, repo.DeleteByID(ctx, "invalid_id"), ErrNotFound)

		remaining, err := repo.FindMany(ctx, IssueFilter{Project: project})
		require.NoError(t, err)
		assert.Empty(t, remaining)

		title := "gone"
		_, err = repo.UpdateByID(ctx, issue.ID, domain.IssuePatch{Title: &title}, time.Now())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func titles(issues []domain.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Title)
	}
	return out
}
