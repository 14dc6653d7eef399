package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"research-rag/internal/model"
	"research-rag/internal/rag"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	user := &model.User{Username: "ada", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	got, err := repo.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	got, err = repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)

	assert.Error(t, repo.Create(ctx, &model.User{Username: "ada", Email: "other@example.com", PasswordHash: "x"}))
}

func TestPaperRepository_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	repo := NewPaperRepository(newTestDB(t))

	paper := &model.Paper{ID: "p1", UserID: 1, Name: "a.pdf", SizeBytes: 42, ContentPreview: "hello", ChunkCount: 2}
	paper.SetEmbedding([]float32{0.5, 0.25})
	require.NoError(t, repo.Create(ctx, paper))

	got, err := repo.GetByIDAndUserID(ctx, "p1", 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []float32{0.5, 0.25}, got.EmbeddingVector())
	assert.Equal(t, 2, got.Dimension)

	other, err := repo.GetByIDAndUserID(ctx, "p1", 2)
	require.NoError(t, err)
	assert.Nil(t, other, "papers are invisible to other users")

	exists, err := repo.Exists(ctx, "p1", 1)
	require.NoError(t, err)
	assert.True(t, exists)

	// the same id may be reused by another user
	require.NoError(t, repo.Create(ctx, &model.Paper{ID: "p1", UserID: 2, Name: "b.pdf"}))
	assert.ErrorIs(t, repo.Create(ctx, &model.Paper{ID: "p1", UserID: 1, Name: "dup.pdf"}), ErrPaperExists)

	deleted, err := repo.DeleteByIDAndUserID(ctx, "p1", 3)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.DeleteByIDAndUserID(ctx, "p1", 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	list, err := repo.ListByUserID(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b.pdf", list[0].Name)
	assert.Empty(t, list[0].Embedding, "list omits embeddings")
}

func TestPaperRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewPaperRepository(newTestDB(t))
	base := time.Now()

	require.NoError(t, repo.Create(ctx, &model.Paper{ID: "old", UserID: 1, Name: "old", CreatedAt: base.Add(-time.Hour)}))
	require.NoError(t, repo.Create(ctx, &model.Paper{ID: "new", UserID: 1, Name: "new", CreatedAt: base}))

	list, err := repo.ListByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
}

func TestNoteRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDB(t))

	got, err := repo.GetByUserID(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Upsert(ctx, &model.Note{UserID: 7, Content: "first"}))
	require.NoError(t, repo.Upsert(ctx, &model.Note{UserID: 7, Content: "second"}))

	got, err = repo.GetByUserID(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "second", got.Content)
}

func TestWhiteboardRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewWhiteboardRepository(newTestDB(t))

	require.NoError(t, repo.Upsert(ctx, &model.Whiteboard{UserID: 1, Content: "boxes"}))
	require.NoError(t, repo.Upsert(ctx, &model.Whiteboard{UserID: 2, Content: "arrows"}))
	require.NoError(t, repo.Upsert(ctx, &model.Whiteboard{UserID: 1, Content: "circles"}))

	got, err := repo.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "circles", got.Content)

	got, err = repo.GetByUserID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "arrows", got.Content)
}

func TestInsightRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInsightRepository(newTestDB(t))

	for i, q := range []string{"first", "second", "third"} {
		rec := &model.InsightRecord{UserID: 1, Query: q, Answer: "a", CreatedAt: time.Now().Add(time.Duration(i) * time.Second)}
		rec.SetSources([]rag.SourceCitation{{Title: "Your Notes", ContentSnippet: "n...", Type: rag.SourceNote}})
		require.NoError(t, repo.Create(ctx, rec))
	}
	require.NoError(t, repo.Create(ctx, &model.InsightRecord{UserID: 2, Query: "other", Answer: "b"}))

	records, err := repo.ListRecentByUserID(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "third", records[0].Query)
	assert.Equal(t, "second", records[1].Query)
	assert.Equal(t, rag.SourceNote, records[0].SourceList()[0].Type)
}
