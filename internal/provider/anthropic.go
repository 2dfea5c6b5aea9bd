package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"medreader/internal/prompt"
)

const anthropicName = "anthropic"

// AnthropicClient calls the Anthropic Messages API. It is the one
// provider here with native multimodal input, so scanned reports can
// be analyzed without an OCR pass.
type AnthropicClient struct {
	apiKey string
	model  sdk.Model
	client sdk.Client
}

// NewAnthropicClient builds a client against api.anthropic.com. As
// with OpenRouter, a missing key only makes the provider unavailable,
// not unroutable.
func NewAnthropicClient(apiKey, model string, connectTimeout, readTimeout time.Duration) (*AnthropicClient, error) {
	if model == "" {
		return nil, fmt.Errorf("model required")
	}
	return &AnthropicClient{
		apiKey: apiKey,
		model:  sdk.Model(model),
		client: sdk.NewClient(
			option.WithAPIKey(apiKey),
			option.WithHTTPClient(newHTTPClient(connectTimeout, readTimeout)),
		),
	}, nil
}

func (c *AnthropicClient) Name() string { return anthropicName }

func (c *AnthropicClient) AnalyzeReport(ctx context.Context, reportText string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     c.model,
		MaxTokens: analysisMaxTokens,
		System:    []sdk.TextBlockParam{{Text: prompt.AnalysisSystem}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt.AnalysisUser(reportText))),
		},
		Temperature: sdk.Float(analysisTemperature),
	})
	if err != nil {
		return "", &CallError{Provider: anthropicName, Err: err}
	}
	return messageText(msg)
}

func (c *AnthropicClient) AnswerFollowUp(ctx context.Context, reportText, priorSummary, question string, history []ChatMessage) (string, error) {
	messages := make([]sdk.MessageParam, 0, len(history)+1)
	for _, turn := range history {
		switch turn.Role {
		case RoleAssistant:
			messages = append(messages, sdk.NewAssistantMessage(sdk.NewTextBlock(turn.Content)))
		default:
			// The Messages API has no system role mid-conversation;
			// such turns ride along as user turns to keep the order.
			messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(turn.Content)))
		}
	}
	messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(question)))

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       c.model,
		MaxTokens:   followUpMaxTokens,
		System:      []sdk.TextBlockParam{{Text: prompt.FollowUpSystem(reportText, priorSummary)}},
		Messages:    messages,
		Temperature: sdk.Float(followUpTemperature),
	})
	if err != nil {
		return "", &CallError{Provider: anthropicName, Err: err}
	}
	return messageText(msg)
}

// AnalyzeImage sends the report image as a base64 block alongside the
// analysis prompt.
func (c *AnthropicClient) AnalyzeImage(ctx context.Context, data []byte, mediaType string) (string, error) {
	// Uploads matched by extension may carry a blank or generic
	// declared type; sniff the bytes instead.
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = http.DetectContentType(data)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     c.model,
		MaxTokens: analysisMaxTokens,
		System:    []sdk.TextBlockParam{{Text: prompt.AnalysisSystem}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(
				sdk.NewImageBlockBase64(mediaType, encoded),
				sdk.NewTextBlock(prompt.AnalysisUser("(see attached report image)")),
			),
		},
		Temperature: sdk.Float(analysisTemperature),
	})
	if err != nil {
		return "", &CallError{Provider: anthropicName, Err: err}
	}
	return messageText(msg)
}

// Available checks that a credential is configured and not a
// placeholder.
func (c *AnthropicClient) Available(_ context.Context) bool {
	return c.apiKey != "" && !strings.HasPrefix(c.apiKey, "YOUR_")
}

func messageText(msg *sdk.Message) (string, error) {
	if msg == nil {
		return "", &CallError{Provider: anthropicName, Err: ErrEmptyResponse}
	}
	var builder strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}
	if builder.Len() == 0 {
		return "", &CallError{Provider: anthropicName, Err: ErrEmptyResponse}
	}
	return builder.String(), nil
}
