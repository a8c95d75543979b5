package llm

import (
	"context"
	"encoding/json"
)

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend. Intent extraction is
// single-shot, one prompt in and one completion out, so that is the whole
// surface.
type LLMProvider interface {
	// Generate sends one prompt to the model and returns its completion
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// Name identifies the backend in logs and provider errors
	Name() string
}

// ToolSpec describes a function the model may call. Parameters follow the
// JSON-schema object shape every provider accepts.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ToolCall is a structured function invocation returned by the model.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// ToolResult carries either a structured call or plain text, whichever the
// model produced.
type ToolResult struct {
	Call *ToolCall
	Text string
}

// ToolProvider is implemented by backends that support native function
// calling. Backends without it fall back to free-text generation.
type ToolProvider interface {
	GenerateWithTools(ctx context.Context, prompt string, tools []ToolSpec, options ...Option) (*ToolResult, error)
}
