package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"research-rag/internal/ai"
	"research-rag/internal/model"
	"research-rag/internal/pkg/mdrender"
	"research-rag/internal/rag"
	"research-rag/internal/repository"
)

// GenerationFailureMessage is shown to users when no answer could be produced.
const GenerationFailureMessage = "Sorry, I couldn't generate a response at this time."

// historyWindow is how many records are loaded and cached per user.
const historyWindow = 50

var (
	ErrGenerationFailed = errors.New("answer generation failed")
	ErrAnswerBlocked    = errors.New("answer blocked by safety filters")
)

type InsightPublisher interface {
	Publish(ctx context.Context, record model.InsightRecord) error
}

type InsightHistoryCache interface {
	GetHistory(ctx context.Context, userID uint) ([]model.InsightRecord, bool, error)
	SetHistory(ctx context.Context, userID uint, records []model.InsightRecord) error
	DeleteHistory(ctx context.Context, userID uint) error
	MarkDirty(ctx context.Context, userID uint) error
	IsDirty(ctx context.Context, userID uint) (bool, error)
}

type InsightService struct {
	assembler *rag.Assembler
	generator ai.Generator
	params    ai.GenerationParams
	insights  *repository.InsightRepository
	publisher InsightPublisher
	cache     InsightHistoryCache
}

type AskInput struct {
	UserID            uint
	Query             string
	PaperIDs          []string
	IncludeNotes      bool
	IncludeWhiteboard bool
}

// Insight is one answer section with its rendered HTML.
type Insight struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	HTML    string `json:"html"`
}

type AskResult struct {
	Answer   string               `json:"answer"`
	Sources  []rag.SourceCitation `json:"sources"`
	Insights []Insight            `json:"insights"`
}

type InsightHistoryItem struct {
	ID        uint                 `json:"id"`
	Query     string               `json:"query"`
	Answer    string               `json:"answer"`
	Sources   []rag.SourceCitation `json:"sources"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewInsightService wires the query path. publisher and cache may be nil, in
// which case records are written synchronously and history is read from MySQL.
func NewInsightService(
	papers *repository.PaperRepository,
	notes *repository.NoteRepository,
	whiteboards *repository.WhiteboardRepository,
	insights *repository.InsightRepository,
	generator ai.Generator,
	params ai.GenerationParams,
	publisher InsightPublisher,
	cache InsightHistoryCache,
) *InsightService {
	return &InsightService{
		assembler: rag.NewAssembler(newSourceStore(papers, notes, whiteboards)),
		generator: generator,
		params:    params,
		insights:  insights,
		publisher: publisher,
		cache:     cache,
	}
}

// Ask answers query against the selected sources. Selection and lookup errors
// from the assembler are returned unchanged.
func (s *InsightService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	query := strings.TrimSpace(input.Query)
	if input.UserID == 0 || query == "" {
		return nil, ErrInvalidInput
	}

	paperIDs := make([]string, 0, len(input.PaperIDs))
	for _, id := range input.PaperIDs {
		if id = strings.TrimSpace(id); id != "" {
			paperIDs = append(paperIDs, id)
		}
	}

	assembled, err := s.assembler.Assemble(ctx, input.UserID, query, rag.QueryContext{
		PaperIDs:          paperIDs,
		IncludeNotes:      input.IncludeNotes,
		IncludeWhiteboard: input.IncludeWhiteboard,
	})
	if err != nil {
		return nil, err
	}

	res := s.generator.Generate(ctx, assembled.Prompt, s.params)
	switch res.Status {
	case ai.GenerationBlocked:
		log.Warn().Uint("user_id", input.UserID).Str("reason", res.BlockReason).Msg("answer blocked")
		return nil, fmt.Errorf("%w: %s", ErrAnswerBlocked, res.BlockReason)
	case ai.GenerationFailed:
		log.Error().Err(res.Err).Uint("user_id", input.UserID).Msg("answer generation failed")
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, res.Err)
	}

	sources := assembled.Citations
	if sources == nil {
		sources = []rag.SourceCitation{}
	}
	result := &AskResult{
		Answer:   res.Text,
		Sources:  sources,
		Insights: renderInsights(rag.ParseAnswer(res.Text)),
	}

	record := model.InsightRecord{
		UserID:    input.UserID,
		Query:     query,
		Answer:    res.Text,
		CreatedAt: time.Now(),
	}
	record.SetSources(sources)
	s.persist(ctx, record)

	return result, nil
}

// persist hands the record to the queue and falls back to a direct insert.
// Failures are logged; the answer has already been produced.
func (s *InsightService) persist(ctx context.Context, record model.InsightRecord) {
	if s.cache != nil {
		_ = s.cache.MarkDirty(ctx, record.UserID)
		_ = s.cache.DeleteHistory(ctx, record.UserID)
	}

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, record)
		if err == nil {
			return
		}
		log.Warn().Err(err).Uint("user_id", record.UserID).Msg("enqueue insight failed, writing directly")
	}

	if err := s.insights.Create(ctx, &record); err != nil {
		log.Error().Err(err).Uint("user_id", record.UserID).Msg("persist insight failed")
	}
}

// History returns the user's most recent insights, newest first.
func (s *InsightService) History(ctx context.Context, userID uint, limit int) ([]InsightHistoryItem, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	if s.cache != nil {
		dirty, err := s.cache.IsDirty(ctx, userID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.cache.GetHistory(ctx, userID); cacheErr == nil && hit {
				return toHistoryItems(trimRecords(cached, limit)), nil
			}
		}
	}

	records, err := s.insights.ListRecentByUserID(ctx, userID, historyWindow)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if dirty, dirtyErr := s.cache.IsDirty(ctx, userID); dirtyErr == nil && !dirty {
			_ = s.cache.SetHistory(ctx, userID, records)
		}
	}
	return toHistoryItems(trimRecords(records, limit)), nil
}

func renderInsights(sections []rag.InsightSection) []Insight {
	out := make([]Insight, 0, len(sections))
	for _, sec := range sections {
		html, err := mdrender.ToHTML(sec.Content)
		if err != nil {
			log.Warn().Err(err).Str("title", sec.Title).Msg("render insight failed")
		}
		out = append(out, Insight{Title: sec.Title, Content: sec.Content, HTML: html})
	}
	return out
}

func trimRecords(records []model.InsightRecord, limit int) []model.InsightRecord {
	if limit <= 0 || limit >= len(records) {
		return records
	}
	return records[:limit]
}

func toHistoryItems(records []model.InsightRecord) []InsightHistoryItem {
	items := make([]InsightHistoryItem, 0, len(records))
	for i := range records {
		items = append(items, InsightHistoryItem{
			ID:        records[i].ID,
			Query:     records[i].Query,
			Answer:    records[i].Answer,
			Sources:   records[i].SourceList(),
			CreatedAt: records[i].CreatedAt,
		})
	}
	return items
}
