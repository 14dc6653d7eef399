package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultEmbedConcurrency = 8

// IngestOutcome is everything a paper record needs from its text.
type IngestOutcome struct {
	ChunkCount int
	Embedding  Vector
	Preview    string
}

// Pipeline runs chunk -> embed -> aggregate for one document.
type Pipeline struct {
	embedder       *Embedder
	maxChunkLength int
	concurrency    int
}

func NewPipeline(embedder *Embedder, maxChunkLength, concurrency int) *Pipeline {
	if maxChunkLength <= 0 {
		maxChunkLength = DefaultMaxChunkLength
	}
	if concurrency <= 0 {
		concurrency = defaultEmbedConcurrency
	}
	return &Pipeline{
		embedder:       embedder,
		maxChunkLength: maxChunkLength,
		concurrency:    concurrency,
	}
}

// Run embeds every chunk of text concurrently and aggregates the results once
// all of them are in. Cancelling ctx stops further embedding calls and Run
// returns the context error without a partial outcome.
func (p *Pipeline) Run(ctx context.Context, text string) (*IngestOutcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}
	chunks := ChunkText(text, p.maxChunkLength)
	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	vectors := make([]Vector, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range chunks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vectors[i] = p.embedder.Embed(gctx, chunks[i].Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	embedding, err := Aggregate(vectors)
	if err != nil {
		return nil, fmt.Errorf("aggregate %d chunk embeddings: %w", len(vectors), err)
	}

	log.Debug().Int("chunks", len(chunks)).Int("dimension", len(embedding)).Msg("document embedded")
	return &IngestOutcome{
		ChunkCount: len(chunks),
		Embedding:  embedding,
		Preview:    ContentPreview(text),
	}, nil
}
