package analyzer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"medreader/internal/cache"
	"medreader/internal/provider"
	"medreader/internal/report"
)

func summaryPtr(text string) *report.Summary {
	sum := report.Summary{Summary: text}
	sum.EnsureLists()
	return &sum
}

type stubImageExtractor struct {
	text  string
	err   error
	calls int
}

func (s *stubImageExtractor) Image(ctx context.Context, data []byte) (string, error) {
	s.calls++
	return s.text, s.err
}

type stubDocExtractor struct {
	text  string
	err   error
	calls int
}

func (s *stubDocExtractor) Document(data []byte) (string, error) {
	s.calls++
	return s.text, s.err
}

func newTestService(t *testing.T, clients []provider.Client, c cache.Cache, docs DocumentExtractor, images ImageExtractor) *Service {
	t.Helper()
	reg, err := provider.NewRegistry(clients, map[string]string{"gemini": "openrouter"}, clients[0].Name())
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(reg, docs, images, c, time.Minute, log)
}

func TestAnalyzeTextEmptyInputSkipsProvider(t *testing.T) {
	mc := &provider.MockClient{ProviderName: "openrouter"}
	svc := newTestService(t, []provider.Client{mc}, nil, nil, nil)

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := svc.AnalyzeText(context.Background(), text, "")
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput for %q, got %v", text, err)
		}
	}
	mc.AssertNotCalled(t, "AnalyzeReport", mock.Anything, mock.Anything)
}

func TestAnalyzeTextHappyPath(t *testing.T) {
	mc := &provider.MockClient{ProviderName: "openrouter"}
	raw := "<think>reasoning first</think>{\"summary\":\"all good\",\"findings\":[],\"glossary\":[],\"discussionQuestions\":[],\"disclaimer\":\"edu\"}"
	mc.On("AnalyzeReport", mock.Anything, "Hemoglobin: 14.2").Return(raw, nil).Once()
	svc := newTestService(t, []provider.Client{mc}, nil, nil, nil)

	analysis, err := svc.AnalyzeText(context.Background(), "Hemoglobin: 14.2", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Summary.Summary != "all good" {
		t.Errorf("unexpected summary: %q", analysis.Summary.Summary)
	}
	if analysis.Summary.Findings == nil || analysis.Summary.Glossary == nil {
		t.Error("expected non-nil list fields")
	}
	if analysis.Provider != "openrouter" {
		t.Errorf("expected provider openrouter, got %s", analysis.Provider)
	}
	if analysis.ReportText != "Hemoglobin: 14.2" {
		t.Errorf("expected report text to be echoed back")
	}
	mc.AssertExpectations(t)
}

func TestAnalyzeTextMalformedOutputDegrades(t *testing.T) {
	mc := &provider.MockClient{ProviderName: "openrouter"}
	mc.On("AnalyzeReport", mock.Anything, mock.Anything).Return("sorry, no JSON today", nil).Once()
	svc := newTestService(t, []provider.Client{mc}, nil, nil, nil)

	analysis, err := svc.AnalyzeText(context.Background(), "some report", "")
	if err != nil {
		t.Fatalf("malformed output must not be an error, got %v", err)
	}
	if len(analysis.Summary.Findings) != 0 {
		t.Error("expected empty findings in fallback")
	}
	if analysis.Summary.Disclaimer == "" {
		t.Error("expected fallback disclaimer")
	}
}

func TestAnalyzeTextProviderFailure(t *testing.T) {
	mc := &provider.MockClient{ProviderName: "openrouter"}
	callErr := &provider.CallError{Provider: "openrouter", Err: errors.New("boom")}
	mc.On("AnalyzeReport", mock.Anything, mock.Anything).Return("", callErr).Once()
	svc := newTestService(t, []provider.Client{mc}, nil, nil, nil)

	_, err := svc.AnalyzeText(context.Background(), "some report", "")
	var got *provider.CallError
	if !errors.As(err, &got) {
		t.Fatalf("expected CallError to surface, got %v", err)
	}
}

func TestAnalyzeTextUnknownProvider(t *testing.T) {
	mc := &provider.MockClient{ProviderName: "openrouter"}
	svc := newTestService(t, []provider.Client{mc}, nil, nil, nil)

	_, err := svc.AnalyzeText(context.Background(), "text", "unknown-xyz")
	var unsupported *provider.UnsupportedProviderError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedProviderError, got %v", err)
	}
	if unsupported.Name != "unknown-xyz" {
		t.Errorf("expected offending name carried, got %q", unsupported.Name)
	}
	mc.AssertNotCalled(t, "AnalyzeReport", mock.Anything, mock.Anything)
}

func TestAnalyzeTextCacheHitSkipsProvider(t *testing.T) {
	mc := &provider.MockClient{ProviderName: "openrouter"}
	mockCache := &cache.MockCache{}
	mockCache.On("GetAnalysis", mock.Anything, cache.AnalysisKey("openrouter", "report")).
		Return(summaryPtr("cached summary"), nil).Once()
	svc := newTestService(t, []provider.Client{mc}, mockCache, nil, nil)

	analysis, err := svc.AnalyzeText(context.Background(), "report", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Summary.Summary != "cached summary" {
		t.Errorf("expected the cached summary, got %q", analysis.Summary.Summary)
	}
	mc.AssertNotCalled(t, "AnalyzeReport", mock.Anything, mock.Anything)
	mockCache.AssertExpectations(t)
}

func TestAnalyzeFilePDFPath(t *testing.T) {
	mc := &provider.MockClient{ProviderName: "openrouter"}
	mc.On("AnalyzeReport", mock.Anything, "extracted pdf text").Return(`{"summary":"ok"}`, nil).Once()
	docs := &stubDocExtractor{text: "extracted pdf text"}
	svc := newTestService(t, []provider.Client{mc}, nil, docs, nil)

	_, err := svc.AnalyzeFile(context.Background(), "report.pdf", "application/pdf", []byte("%PDF"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs.calls != 1 {
		t.Errorf("expected one document extraction, got %d", docs.calls)
	}
	mc.AssertExpectations(t)
}

func TestAnalyzeFileDirectImagePath(t *testing.T) {
	mc := &provider.MockImageClient{}
	mc.ProviderName = "anthropic"
	mc.On("AnalyzeImage", mock.Anything, []byte{0x89}, "image/png").Return(`{"summary":"from image"}`, nil).Once()
	images := &stubImageExtractor{text: "should not be used"}
	svc := newTestService(t, []provider.Client{mc}, nil, nil, images)

	analysis, err := svc.AnalyzeFile(context.Background(), "scan.png", "image/png", []byte{0x89}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Summary.Summary != "from image" {
		t.Errorf("expected direct image analysis result, got %q", analysis.Summary.Summary)
	}
	if images.calls != 0 {
		t.Error("OCR must not run when direct image analysis succeeds")
	}
	mc.AssertNotCalled(t, "AnalyzeReport", mock.Anything, mock.Anything)
}

func TestAnalyzeFileImageFallsBackToOCROnce(t *testing.T) {
	mc := &provider.MockImageClient{}
	mc.ProviderName = "anthropic"
	mc.On("AnalyzeImage", mock.Anything, mock.Anything, mock.Anything).
		Return("", &provider.CallError{Provider: "anthropic", Err: errors.New("vision down")}).Once()
	mc.On("AnalyzeReport", mock.Anything, "ocr text").Return(`{"summary":"via ocr"}`, nil).Once()
	images := &stubImageExtractor{text: "ocr text"}
	svc := newTestService(t, []provider.Client{mc}, nil, nil, images)

	analysis, err := svc.AnalyzeFile(context.Background(), "scan.jpg", "image/jpeg", []byte{0x1}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Summary.Summary != "via ocr" {
		t.Errorf("expected the OCR fallback result, got %q", analysis.Summary.Summary)
	}
	if images.calls != 1 {
		t.Errorf("expected exactly one OCR attempt, got %d", images.calls)
	}
	mc.AssertExpectations(t)
}

func TestAnalyzeFileImageWithoutVisionGoesStraightToOCR(t *testing.T) {
	mc := &provider.MockClient{ProviderName: "ollama"}
	mc.On("AnalyzeReport", mock.Anything, "ocr text").Return(`{"summary":"ok"}`, nil).Once()
	images := &stubImageExtractor{text: "ocr text"}
	svc := newTestService(t, []provider.Client{mc}, nil, nil, images)

	_, err := svc.AnalyzeFile(context.Background(), "scan.png", "image/png", []byte{0x1}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if images.calls != 1 {
		t.Errorf("expected one OCR call, got %d", images.calls)
	}
}

func TestAnalyzeFileUnsupportedType(t *testing.T) {
	mc := &provider.MockClient{ProviderName: "openrouter"}
	svc := newTestService(t, []provider.Client{mc}, nil, nil, nil)

	_, err := svc.AnalyzeFile(context.Background(), "notes.docx", "application/msword", []byte{0x1}, "")
	if !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestFollowUpDelegatesWithHistory(t *testing.T) {
	mc := &provider.MockClient{ProviderName: "openrouter"}
	history := []provider.ChatMessage{
		{Role: "user", Content: "q1"},
		{Role: "assistant", Content: "a1"},
		{Role: "user", Content: "q2"},
	}
	mc.On("AnswerFollowUp", mock.Anything, "report", "prior", "new question", history).
		Return("an answer", nil).Once()
	svc := newTestService(t, []provider.Client{mc}, nil, nil, nil)

	answer, err := svc.FollowUp(context.Background(), "report", "prior", "new question", history, "gemini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "an answer" {
		t.Errorf("unexpected answer: %q", answer)
	}
	mc.AssertExpectations(t)
}
