package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"research-rag/internal/ai"
	"research-rag/internal/model"
	"research-rag/internal/rag"
	"research-rag/internal/repository"
)

const testDimension = 16

type repos struct {
	users       *repository.UserRepository
	papers      *repository.PaperRepository
	notes       *repository.NoteRepository
	whiteboards *repository.WhiteboardRepository
	insights    *repository.InsightRepository
}

func newTestRepos(t *testing.T) repos {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repository.AutoMigrate(db))

	return repos{
		users:       repository.NewUserRepository(db),
		papers:      repository.NewPaperRepository(db),
		notes:       repository.NewNoteRepository(db),
		whiteboards: repository.NewWhiteboardRepository(db),
		insights:    repository.NewInsightRepository(db),
	}
}

type runeTokenizer struct{}

func (runeTokenizer) Encode(text string) []int {
	out := make([]int, 0, len(text))
	for _, r := range text {
		out = append(out, int(r))
	}
	return out
}

// shortVectorProvider returns 8-value vectors, except for text containing
// "fail", which errors and forces the 16-value fallback.
type shortVectorProvider struct{}

func (shortVectorProvider) EmbedText(_ context.Context, text string) ([]float32, error) {
	if strings.Contains(text, "fail") {
		return nil, errors.New("provider unavailable")
	}
	return make([]float32, 8), nil
}

func newTestEmbedder(provider rag.EmbeddingProvider, timeout time.Duration) *rag.Embedder {
	embedder, err := rag.NewEmbedder(provider, runeTokenizer{}, testDimension, timeout)
	if err != nil {
		panic(err)
	}
	return embedder
}

func newTestPipeline(provider rag.EmbeddingProvider) *rag.Pipeline {
	return rag.NewPipeline(newTestEmbedder(provider, time.Second), 40, 4)
}

type stubGenerator struct {
	mu      sync.Mutex
	result  ai.GenerationResult
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string, _ ai.GenerationParams) ai.GenerationResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.result
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type recordingPublisher struct {
	mu      sync.Mutex
	records []model.InsightRecord
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, record model.InsightRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.records = append(p.records, record)
	return nil
}
