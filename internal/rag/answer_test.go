package rag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"research-rag/internal/rag"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []rag.InsightSection
	}{
		{
			name: "two level-two headings",
			raw:  "## Gap\nFound a gap.\n## Direction\nTry X.",
			want: []rag.InsightSection{
				{Title: "Gap", Content: "Found a gap."},
				{Title: "Direction", Content: "Try X."},
			},
		},
		{
			name: "no headings keeps input verbatim",
			raw:  "  Just a plain answer.\n\nWith two paragraphs.\n",
			want: []rag.InsightSection{
				{Title: "Research Insight", Content: "  Just a plain answer.\n\nWith two paragraphs.\n"},
			},
		},
		{
			name: "preamble before first heading",
			raw:  "Overview first.\n\n# Findings\n- one\n- two\n",
			want: []rag.InsightSection{
				{Title: "Research Insight", Content: "Overview first."},
				{Title: "Findings", Content: "- one\n- two"},
			},
		},
		{
			name: "deeper headings stay inside a section",
			raw:  "## Main\nintro\n### Detail\nmore",
			want: []rag.InsightSection{
				{Title: "Main", Content: "intro\n### Detail\nmore"},
			},
		},
		{
			name: "hash without space is not a heading",
			raw:  "#hashtag stays\n## Real\nbody",
			want: []rag.InsightSection{
				{Title: "Research Insight", Content: "#hashtag stays"},
				{Title: "Real", Content: "body"},
			},
		},
		{
			name: "heading without body",
			raw:  "# Only title",
			want: []rag.InsightSection{
				{Title: "Only title", Content: ""},
			},
		},
		{
			name: "whitespace only",
			raw:  " \n ",
			want: []rag.InsightSection{
				{Title: "Research Insight", Content: " \n "},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rag.ParseAnswer(tt.raw))
		})
	}
}

func TestParseAnswer_AlwaysAtLeastOneSection(t *testing.T) {
	for _, raw := range []string{"x", "#", "##", "# \n", "\n\n## A\n"} {
		assert.NotEmpty(t, rag.ParseAnswer(raw), raw)
	}
}
