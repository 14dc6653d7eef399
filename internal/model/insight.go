package model

import (
	"encoding/json"
	"time"

	"research-rag/internal/rag"
)

// InsightRecord is one answered research question.
type InsightRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Query     string    `gorm:"type:text;not null" json:"query"`
	Answer    string    `gorm:"type:mediumtext;not null" json:"answer"`
	Sources   string    `gorm:"type:text" json:"sources"` // JSON array of rag.SourceCitation
	CreatedAt time.Time `json:"created_at"`
}

func (r *InsightRecord) SetSources(sources []rag.SourceCitation) {
	if len(sources) == 0 {
		r.Sources = "[]"
		return
	}
	b, _ := json.Marshal(sources)
	r.Sources = string(b)
}

// SourceList returns the parsed citations; empty on parse error.
func (r *InsightRecord) SourceList() []rag.SourceCitation {
	if r.Sources == "" {
		return []rag.SourceCitation{}
	}
	var out []rag.SourceCitation
	if err := json.Unmarshal([]byte(r.Sources), &out); err != nil {
		return []rag.SourceCitation{}
	}
	return out
}
