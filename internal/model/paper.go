package model

import (
	"encoding/json"
	"time"
)

// Paper is one ingested document. Embedding is the mean of its chunk
// embeddings, stored as a JSON array of float32.
type Paper struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	UserID         uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Name           string    `gorm:"size:256;not null" json:"name"`
	SizeBytes      int64     `gorm:"not null" json:"size_bytes"`
	ContentPreview string    `gorm:"type:text" json:"content_preview"`
	Embedding      string    `gorm:"type:mediumtext" json:"-"`
	Dimension      int       `gorm:"not null" json:"dimension"`
	ChunkCount     int       `gorm:"not null" json:"chunk_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding; nil on parse error.
func (p *Paper) EmbeddingVector() []float32 {
	if p.Embedding == "" {
		return nil
	}
	var v []float32
	if err := json.Unmarshal([]byte(p.Embedding), &v); err != nil {
		return nil
	}
	return v
}

// SetEmbedding stores vec as JSON and records its dimension.
func (p *Paper) SetEmbedding(vec []float32) {
	p.Dimension = len(vec)
	if len(vec) == 0 {
		p.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	p.Embedding = string(b)
}
