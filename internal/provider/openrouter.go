package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"medreader/internal/prompt"
)

const (
	openRouterName    = "openrouter"
	openRouterBaseURL = "https://openrouter.ai/api/v1"

	// Reasoning models need headroom to produce the full schema.
	analysisMaxTokens   = 4000
	analysisTemperature = 0.1
	followUpMaxTokens   = 1000
	followUpTemperature = 0.5
)

// OpenRouterClient calls the OpenRouter gateway, which speaks the
// OpenAI chat-completions dialect across many hosted models.
type OpenRouterClient struct {
	apiKey string
	model  openai.ChatModel
	client *openai.Client
}

// NewOpenRouterClient builds a client against openrouter.ai. referer
// is sent as the HTTP-Referer header OpenRouter requires for
// attribution. A missing or placeholder key is allowed at construction
// so the provider stays routable; Available reports it as unusable.
func NewOpenRouterClient(apiKey, model, referer string, connectTimeout, readTimeout time.Duration) (*OpenRouterClient, error) {
	if model == "" {
		return nil, fmt.Errorf("model required")
	}
	cli := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(openRouterBaseURL),
		option.WithHeader("HTTP-Referer", referer),
		option.WithHeader("X-Title", "medreader"),
		option.WithHTTPClient(newHTTPClient(connectTimeout, readTimeout)),
	)
	return &OpenRouterClient{
		apiKey: apiKey,
		model:  openai.ChatModel(model),
		client: &cli,
	}, nil
}

func (c *OpenRouterClient) Name() string { return openRouterName }

func (c *OpenRouterClient) AnalyzeReport(ctx context.Context, reportText string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			systemMessage(prompt.AnalysisSystem),
			userMessage(prompt.AnalysisUser(reportText)),
		},
		Temperature: openai.Float(analysisTemperature),
		MaxTokens:   openai.Int(analysisMaxTokens),
		// Strict-JSON output mode; the sanitizer still runs downstream
		// because not every routed model honors it.
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", &CallError{Provider: openRouterName, Err: err}
	}
	return firstChoice(resp)
}

func (c *OpenRouterClient) AnswerFollowUp(ctx context.Context, reportText, priorSummary, question string, history []ChatMessage) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, systemMessage(prompt.FollowUpSystem(reportText, priorSummary)))
	for _, msg := range history {
		messages = append(messages, historyMessage(msg))
	}
	messages = append(messages, userMessage(question))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(followUpTemperature),
		MaxTokens:   openai.Int(followUpMaxTokens),
	})
	if err != nil {
		return "", &CallError{Provider: openRouterName, Err: err}
	}
	return firstChoice(resp)
}

// Available checks that a credential is configured and not a
// placeholder; OpenRouter has no cheap unauthenticated status probe.
func (c *OpenRouterClient) Available(_ context.Context) bool {
	return c.apiKey != "" && !strings.HasPrefix(c.apiKey, "YOUR_")
}

func firstChoice(resp *openai.ChatCompletion) (string, error) {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &CallError{Provider: openRouterName, Err: ErrEmptyResponse}
	}
	return resp.Choices[0].Message.Content, nil
}

func systemMessage(content string) openai.ChatCompletionMessageParamUnion {
	return openai.ChatCompletionMessageParamUnion{
		OfSystem: &openai.ChatCompletionSystemMessageParam{
			Content: openai.ChatCompletionSystemMessageParamContentUnion{
				OfString: openai.String(content),
			},
		},
	}
}

func userMessage(content string) openai.ChatCompletionMessageParamUnion {
	return openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfString: openai.String(content),
			},
		},
	}
}

func assistantMessage(content string) openai.ChatCompletionMessageParamUnion {
	return openai.ChatCompletionMessageParamUnion{
		OfAssistant: &openai.ChatCompletionAssistantMessageParam{
			Content: openai.ChatCompletionAssistantMessageParamContentUnion{
				OfString: openai.String(content),
			},
		},
	}
}

// historyMessage maps a caller-supplied turn onto the wire union,
// preserving its role.
func historyMessage(msg ChatMessage) openai.ChatCompletionMessageParamUnion {
	switch msg.Role {
	case RoleAssistant:
		return assistantMessage(msg.Content)
	case RoleSystem:
		return systemMessage(msg.Content)
	default:
		return userMessage(msg.Content)
	}
}
