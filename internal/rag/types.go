package rag

const (
	// DefaultMaxChunkLength is the chunk bound, in runes, used when callers pass <= 0.
	DefaultMaxChunkLength = 1000
	// DefaultDimension matches the provider's text-embedding dimension.
	DefaultDimension = 1536
	// PreviewLength is the number of leading runes kept as a paper's content preview.
	PreviewLength = 10000
	// SnippetLength is the number of leading runes kept in a citation snippet.
	SnippetLength = 200
)

// Chunk is a contiguous span of a document's text.
type Chunk struct {
	Text          string `json:"text"`
	SequenceIndex int    `json:"sequence_index"`
}

// Vector is an embedding of fixed dimension.
type Vector []float32

// QueryContext selects the sources folded into one query's prompt.
type QueryContext struct {
	PaperIDs          []string
	IncludeNotes      bool
	IncludeWhiteboard bool
}

// Empty reports whether nothing is selected.
func (q QueryContext) Empty() bool {
	return len(q.PaperIDs) == 0 && !q.IncludeNotes && !q.IncludeWhiteboard
}

type SourceType string

const (
	SourceDocument   SourceType = "document"
	SourceNote       SourceType = "note"
	SourceWhiteboard SourceType = "whiteboard"
)

// SourceCitation points back at content that was folded into a prompt.
type SourceCitation struct {
	Title          string     `json:"title"`
	ContentSnippet string     `json:"content"`
	Type           SourceType `json:"type"`
}

// InsightSection is one titled section of a generated answer.
type InsightSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
