package provider

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
	ProviderName string
}

func (m *MockClient) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

func (m *MockClient) AnalyzeReport(ctx context.Context, reportText string) (string, error) {
	args := m.Called(ctx, reportText)
	return args.String(0), args.Error(1)
}

func (m *MockClient) AnswerFollowUp(ctx context.Context, reportText, priorSummary, question string, history []ChatMessage) (string, error) {
	args := m.Called(ctx, reportText, priorSummary, question, history)
	return args.String(0), args.Error(1)
}

func (m *MockClient) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// MockImageClient extends MockClient with the multimodal capability.
type MockImageClient struct {
	MockClient
}

func (m *MockImageClient) AnalyzeImage(ctx context.Context, data []byte, mediaType string) (string, error) {
	args := m.Called(ctx, data, mediaType)
	return args.String(0), args.Error(1)
}
