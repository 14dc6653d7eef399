package rag

import (
	"regexp"
	"strings"
)

// DefaultInsightTitle titles sections that carry no heading.
const DefaultInsightTitle = "Research Insight"

var headingStart = regexp.MustCompile(`(?m)^#{1,2}[ \t]`)

// ParseAnswer splits a generated answer into sections at every line starting
// with "# " or "## ". Each heading stays with the text that follows it.
// Input without any non-blank section comes back as one untitled section
// holding rawAnswer verbatim.
func ParseAnswer(rawAnswer string) []InsightSection {
	starts := headingStart.FindAllStringIndex(rawAnswer, -1)
	if len(starts) == 0 {
		return []InsightSection{{Title: DefaultInsightTitle, Content: rawAnswer}}
	}

	bounds := make([]int, 0, len(starts)+2)
	bounds = append(bounds, 0)
	for _, loc := range starts {
		if loc[0] != 0 {
			bounds = append(bounds, loc[0])
		}
	}
	bounds = append(bounds, len(rawAnswer))

	var sections []InsightSection
	for i := 0; i+1 < len(bounds); i++ {
		if section, ok := parseSection(rawAnswer[bounds[i]:bounds[i+1]]); ok {
			sections = append(sections, section)
		}
	}
	if len(sections) == 0 {
		return []InsightSection{{Title: DefaultInsightTitle, Content: rawAnswer}}
	}
	return sections
}

func parseSection(raw string) (InsightSection, bool) {
	if strings.TrimSpace(raw) == "" {
		return InsightSection{}, false
	}
	if loc := headingStart.FindStringIndex(raw); loc == nil || loc[0] != 0 {
		return InsightSection{Title: DefaultInsightTitle, Content: strings.TrimSpace(raw)}, true
	}

	heading, body, _ := strings.Cut(raw, "\n")
	title := strings.TrimSpace(strings.TrimLeft(heading, "#"))
	if title == "" {
		title = DefaultInsightTitle
	}
	return InsightSection{Title: title, Content: strings.TrimSpace(body)}, true
}
