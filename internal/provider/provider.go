// Package provider contains the interchangeable LLM backend clients
// and the registry that routes a request to one of them.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Message roles accepted in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is one turn of a follow-up conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// Client is the capability set every provider implements. Clients
// return the model's raw text output; normalization and parsing happen
// downstream so the same sanitizer covers every backend.
type Client interface {
	// Name returns the identifier the registry routes by.
	Name() string

	// AnalyzeReport sends the analysis prompt for the given report text
	// and returns raw model output. Providers that offer a strict-JSON
	// output mode must request it.
	AnalyzeReport(ctx context.Context, reportText string) (string, error)

	// AnswerFollowUp sends system + ordered history + the new question
	// as a turn sequence, preserving the caller-supplied order.
	AnswerFollowUp(ctx context.Context, reportText, priorSummary, question string, history []ChatMessage) (string, error)

	// Available reports whether the backend is reachable or usable. It
	// never returns an error; unreachable means false.
	Available(ctx context.Context) bool
}

// ImageAnalyzer is the optional multimodal capability. Callers check
// for it with a type assertion on a Client.
type ImageAnalyzer interface {
	// AnalyzeImage sends the report image directly to a multimodal
	// model and returns raw model output.
	AnalyzeImage(ctx context.Context, data []byte, mediaType string) (string, error)
}

// ErrImageUnsupported signals that a provider has no native image
// input. Returned by AnalyzeImage helpers rather than silently
// degrading.
var ErrImageUnsupported = errors.New("image analysis not supported by this provider")

// ErrEmptyResponse signals a 2xx reply whose payload carried no model
// output.
var ErrEmptyResponse = errors.New("empty response from provider")

// CallError wraps any transport failure, non-2xx response, timeout, or
// empty payload from a backend. Provider clients never retry; a retry
// policy, if any, belongs above them.
type CallError struct {
	Provider string
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("provider %s call failed: %v", e.Provider, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// AnalyzeImage dispatches to the client's multimodal capability, or
// reports ErrImageUnsupported when the client lacks one.
func AnalyzeImage(ctx context.Context, c Client, data []byte, mediaType string) (string, error) {
	ia, ok := c.(ImageAnalyzer)
	if !ok {
		return "", fmt.Errorf("%w (%s)", ErrImageUnsupported, c.Name())
	}
	return ia.AnalyzeImage(ctx, data, mediaType)
}
