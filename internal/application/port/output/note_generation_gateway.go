package output

import "context"

// NoteGenerationGateway turns a transcript into a structured document.
// Like TranscriptionGateway it owns its retry policy. A response that arrives but
// cannot be understood is not an error; it is reported as Malformed.
type NoteGenerationGateway interface {
	// Generate builds a titled block list from a transcript
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)

	// Name identifies the backing provider (e.g. "openai", "classifier")
	Name() string

	// HealthCheck verifies the provider is reachable
	HealthCheck(ctx context.Context) error
}

// GenerationRequest represents a request to generate notes
type GenerationRequest struct {
	Transcript string // Transcript text
	FileName   string // Original upload name, used when the transcript alone is ambiguous
}

// GeneratedBlock is one block as emitted by a generator.
// The id, if any, is untrusted and replaced during normalization.
type GeneratedBlock struct {
	ID       string         `json:"id,omitempty" yaml:"id,omitempty"`
	Type     string         `json:"type" yaml:"type"`
	Content  string         `json:"content" yaml:"content"`
	Checked  *bool          `json:"checked,omitempty" yaml:"checked,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// GenerationResult is either Parsed or Malformed
type GenerationResult interface {
	isGenerationResult()
}

// Parsed is a generator response that decoded into a title and blocks
type Parsed struct {
	Title  string
	Blocks []GeneratedBlock
}

// Malformed is a generator response that could not be decoded
type Malformed struct {
	Raw    string // Response body as received
	Reason string // Why decoding failed
}

func (Parsed) isGenerationResult()    {}
func (Malformed) isGenerationResult() {}
