package rag

import (
	"context"
	"fmt"
	"strings"
)

const (
	systemInstruction = `You are Stressy Bot, an AI research assistant designed to help researchers with their work.
You analyze research papers, notes, and whiteboard content to provide insights.
Be concise, accurate, and helpful. Focus on identifying connections between ideas,
suggesting research directions, and spotting potential research gaps.

When citing information, clearly indicate which source it came from.`

	closingInstruction = "Provide a well-structured, insightful response that directly addresses the user's question."

	notesTitle        = "Your Notes"
	whiteboardTitle   = "Your Whiteboard"
	whiteboardSnippet = "Visual content from your whiteboard"
	snippetEllipsis   = "..."
)

// StoredSource is the textual content of one stored source.
type StoredSource struct {
	ID      string
	Name    string
	Content string
}

// SourceStore reads owner-scoped sources. A missing record is (nil, nil).
type SourceStore interface {
	PaperSource(ctx context.Context, ownerID uint, paperID string) (*StoredSource, error)
	NoteSource(ctx context.Context, ownerID uint) (*StoredSource, error)
	WhiteboardSource(ctx context.Context, ownerID uint) (*StoredSource, error)
}

// AssembledContext is a composed prompt and the sources it was built from.
type AssembledContext struct {
	Prompt    string
	Citations []SourceCitation
}

type Assembler struct {
	store SourceStore
}

func NewAssembler(store SourceStore) *Assembler {
	return &Assembler{store: store}
}

// Assemble gathers the selected sources for ownerID and composes the prompt.
// Selected papers that cannot be found fail with a *SourceNotFoundError;
// a missing notes or whiteboard record is skipped.
func (a *Assembler) Assemble(ctx context.Context, ownerID uint, query string, sel QueryContext) (*AssembledContext, error) {
	if sel.Empty() {
		return nil, ErrEmptySelection
	}

	var (
		block     strings.Builder
		citations []SourceCitation
	)

	for _, id := range sel.PaperIDs {
		paper, err := a.store.PaperSource(ctx, ownerID, id)
		if err != nil {
			return nil, fmt.Errorf("read paper %q: %w", id, err)
		}
		if paper == nil {
			return nil, &SourceNotFoundError{Type: SourceDocument, ID: id}
		}
		fmt.Fprintf(&block, "Paper \"%s\": %s\n\n", paper.Name, paper.Content)
		citations = append(citations, SourceCitation{
			Title:          paper.Name,
			ContentSnippet: Snippet(paper.Content),
			Type:           SourceDocument,
		})
	}

	if sel.IncludeNotes {
		note, err := a.store.NoteSource(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("read notes of user %d: %w", ownerID, err)
		}
		if note != nil {
			fmt.Fprintf(&block, "User Notes: %s\n\n", note.Content)
			citations = append(citations, SourceCitation{
				Title:          notesTitle,
				ContentSnippet: Snippet(note.Content),
				Type:           SourceNote,
			})
		}
	}

	if sel.IncludeWhiteboard {
		board, err := a.store.WhiteboardSource(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("read whiteboard of user %d: %w", ownerID, err)
		}
		if board != nil {
			fmt.Fprintf(&block, "Whiteboard Content: %s\n\n", board.Content)
			citations = append(citations, SourceCitation{
				Title:          whiteboardTitle,
				ContentSnippet: whiteboardSnippet,
				Type:           SourceWhiteboard,
			})
		}
	}

	return &AssembledContext{
		Prompt:    ComposePrompt(query, block.String()),
		Citations: citations,
	}, nil
}

// ComposePrompt joins the system instruction, the user question, the context
// block (left out when empty) and the closing instruction.
func ComposePrompt(query, contextBlock string) string {
	var b strings.Builder
	b.WriteString(systemInstruction)
	b.WriteString("\n\nUser question: ")
	b.WriteString(query)
	b.WriteString("\n\n")
	if contextBlock != "" {
		b.WriteString("Context from user's research materials:\n")
		b.WriteString(contextBlock)
		b.WriteString("\n\n")
	}
	b.WriteString(closingInstruction)
	return b.String()
}

// Snippet returns the first SnippetLength runes of content followed by an ellipsis.
func Snippet(content string) string {
	return truncateRunes(content, SnippetLength) + snippetEllipsis
}
