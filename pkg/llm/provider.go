package llm

import (
	"context"
	"errors"
)

// Sentinel errors for backend failures. Callers distinguish a transport or
// status failure (ErrBackend) from a response that arrived but could not be
// used (ErrBadResponse).
var (
	ErrBackend     = errors.New("llm: backend request failed")
	ErrBadResponse = errors.New("llm: malformed backend response")
)

// ModelInfo describes one model available on the backend.
type ModelInfo struct {
	Name string `json:"name"`
}

// Option allows for optional parameters like Model, Temperature, etc.
type Option func(*Options)

type Options struct {
	Model       string // override the provider's default model
	Temperature float64
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

// LLMProvider defines the contract for an inference backend.
type LLMProvider interface {
	// Generate sends a single prompt and returns the full buffered generation.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// ListModels returns the models the backend can serve.
	ListModels(ctx context.Context) ([]ModelInfo, error)
}
