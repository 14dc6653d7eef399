package ai

import "context"

// ProviderConfig holds the endpoint settings shared by every provider client.
type ProviderConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// SafetySetting is one content-safety threshold passed to the provider as is.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// GenerationParams are sampling and safety knobs forwarded unmodified.
type GenerationParams struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
	Safety          []SafetySetting
}

var defaultHarmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// DefaultGenerationParams returns the research-assistant defaults.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		Temperature:     0.2,
		TopP:            0.8,
		TopK:            40,
		MaxOutputTokens: 4096,
		Safety:          SafetySettings("BLOCK_MEDIUM_AND_ABOVE"),
	}
}

// SafetySettings applies one threshold to every default harm category.
func SafetySettings(threshold string) []SafetySetting {
	out := make([]SafetySetting, len(defaultHarmCategories))
	for i, category := range defaultHarmCategories {
		out[i] = SafetySetting{Category: category, Threshold: threshold}
	}
	return out
}

type GenerationStatus int

const (
	GenerationOK GenerationStatus = iota
	GenerationBlocked
	GenerationFailed
)

func (s GenerationStatus) String() string {
	switch s {
	case GenerationOK:
		return "ok"
	case GenerationBlocked:
		return "blocked"
	default:
		return "failed"
	}
}

// GenerationResult is exactly one of: generated text, a safety block, or a
// provider error.
type GenerationResult struct {
	Status      GenerationStatus
	Text        string
	BlockReason string
	Err         error
}

func Generated(text string) GenerationResult {
	return GenerationResult{Status: GenerationOK, Text: text}
}

func Blocked(reason string) GenerationResult {
	return GenerationResult{Status: GenerationBlocked, BlockReason: reason}
}

func Failed(err error) GenerationResult {
	return GenerationResult{Status: GenerationFailed, Err: err}
}

// Generator produces an answer for a composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) GenerationResult
}
