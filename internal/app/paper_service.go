package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"research-rag/internal/model"
	"research-rag/internal/rag"
	"research-rag/internal/repository"
)

var (
	ErrPaperNotFound = errors.New("paper not found")
	ErrPaperExists   = repository.ErrPaperExists
)

type PaperService struct {
	papers   *repository.PaperRepository
	pipeline *rag.Pipeline
	pool     *ants.Pool
}

type IngestInput struct {
	UserID    uint
	ID        string
	Name      string
	SizeBytes int64
	Content   string
}

type IngestResult struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SizeBytes  int64  `json:"size_bytes"`
	ChunkCount int    `json:"chunk_count"`
	Dimension  int    `json:"dimension"`
}

// BatchItemResult reports one document of a batch; exactly one of Result and
// Err is set.
type BatchItemResult struct {
	Name   string
	Result *IngestResult
	Err    error
}

// NewPaperService wires ingestion. pool bounds batch ingestion; when nil each
// batch item gets its own goroutine.
func NewPaperService(papers *repository.PaperRepository, pipeline *rag.Pipeline, pool *ants.Pool) *PaperService {
	return &PaperService{
		papers:   papers,
		pipeline: pipeline,
		pool:     pool,
	}
}

// Ingest chunks, embeds and aggregates the content, then stores the paper in
// one insert. Nothing is written when any step fails.
func (s *PaperService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	name := strings.TrimSpace(input.Name)
	if input.UserID == 0 || name == "" {
		return nil, ErrInvalidInput
	}

	id := strings.TrimSpace(input.ID)
	if id != "" {
		if utf8.RuneCountInString(id) > 64 {
			return nil, ErrInvalidInput
		}
		exists, err := s.papers.Exists(ctx, id, input.UserID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrPaperExists
		}
	} else {
		id = uuid.NewString()
	}

	outcome, err := s.pipeline.Run(ctx, input.Content)
	if err != nil {
		return nil, fmt.Errorf("ingest paper %q: %w", id, err)
	}

	size := input.SizeBytes
	if size <= 0 {
		size = int64(len(input.Content))
	}
	paper := &model.Paper{
		ID:             id,
		UserID:         input.UserID,
		Name:           name,
		SizeBytes:      size,
		ContentPreview: outcome.Preview,
		ChunkCount:     outcome.ChunkCount,
	}
	paper.SetEmbedding(outcome.Embedding)
	if err := s.papers.Create(ctx, paper); err != nil {
		return nil, err
	}

	log.Info().
		Uint("user_id", input.UserID).
		Str("paper_id", id).
		Int("chunks", outcome.ChunkCount).
		Int64("size_bytes", size).
		Msg("paper ingested")

	return &IngestResult{
		ID:         paper.ID,
		Name:       paper.Name,
		SizeBytes:  paper.SizeBytes,
		ChunkCount: paper.ChunkCount,
		Dimension:  paper.Dimension,
	}, nil
}

// IngestBatch runs one independent pipeline per input. Results keep the input
// order and one failing document does not affect the others.
func (s *PaperService) IngestBatch(ctx context.Context, inputs []IngestInput) []BatchItemResult {
	results := make([]BatchItemResult, len(inputs))
	var wg sync.WaitGroup

	for i := range inputs {
		wg.Add(1)
		task := func(idx int) {
			defer wg.Done()
			res, err := s.Ingest(ctx, inputs[idx])
			results[idx] = BatchItemResult{Name: inputs[idx].Name, Result: res, Err: err}
		}

		idx := i
		if s.pool != nil {
			if submitErr := s.pool.Submit(func() { task(idx) }); submitErr == nil {
				continue
			}
		}
		go task(idx)
	}

	wg.Wait()
	return results
}

func (s *PaperService) List(ctx context.Context, userID uint) ([]model.Paper, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.papers.ListByUserID(ctx, userID)
}

func (s *PaperService) Get(ctx context.Context, userID uint, id string) (*model.Paper, error) {
	if userID == 0 || strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	paper, err := s.papers.GetByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, ErrPaperNotFound
	}
	return paper, nil
}

func (s *PaperService) Delete(ctx context.Context, userID uint, id string) error {
	if userID == 0 || strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	deleted, err := s.papers.DeleteByIDAndUserID(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPaperNotFound
	}
	log.Info().Uint("user_id", userID).Str("paper_id", id).Msg("paper deleted")
	return nil
}
