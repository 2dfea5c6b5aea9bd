// Package analyzer composes the pipeline: resolve a provider, obtain
// raw model output (directly from an image or via extracted text),
// sanitize it, and parse it into the structured contract. It is the
// only package that sees the extraction collaborators.
package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"medreader/internal/cache"
	"medreader/internal/extract"
	"medreader/internal/provider"
	"medreader/internal/report"
	"medreader/internal/sanitize"
)

// ErrEmptyInput reports a request with no text to analyze. It is a
// terminal condition: no provider is ever called for it.
var ErrEmptyInput = errors.New("report text is empty; please provide lab report content")

// ErrUnsupportedFile reports an upload that is neither a PDF nor a
// supported image.
var ErrUnsupportedFile = errors.New("unsupported file type; please upload a PDF or image (JPG, PNG, TIFF, BMP)")

// DocumentExtractor extracts text from PDF bytes.
type DocumentExtractor interface {
	Document(data []byte) (string, error)
}

// ImageExtractor extracts text from image bytes via OCR.
type ImageExtractor interface {
	Image(ctx context.Context, data []byte) (string, error)
}

// DocumentFunc adapts a plain function to DocumentExtractor.
type DocumentFunc func(data []byte) (string, error)

func (f DocumentFunc) Document(data []byte) (string, error) { return f(data) }

// Analysis is the result of one analyze request. Everything in it is
// request-scoped; nothing outlives the response.
type Analysis struct {
	ID         uuid.UUID
	Provider   string
	Summary    report.Summary
	ReportText string
}

// Service orchestrates analyze and follow-up requests.
type Service struct {
	registry *provider.Registry
	docs     DocumentExtractor
	images   ImageExtractor
	cache    cache.Cache
	cacheTTL time.Duration
	log      *slog.Logger
}

// New builds a Service. The registry is constructed once at startup
// and injected here; the Service never mutates it.
func New(registry *provider.Registry, docs DocumentExtractor, images ImageExtractor, c cache.Cache, cacheTTL time.Duration, log *slog.Logger) *Service {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Service{
		registry: registry,
		docs:     docs,
		images:   images,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// AnalyzeText runs the text analysis flow. Blank text fails with
// ErrEmptyInput before any provider is consulted.
func (s *Service) AnalyzeText(ctx context.Context, reportText, providerID string) (Analysis, error) {
	if isBlank(reportText) {
		return Analysis{}, ErrEmptyInput
	}
	client, err := s.registry.Resolve(providerID)
	if err != nil {
		return Analysis{}, err
	}
	return s.analyzeWith(ctx, client, reportText)
}

// AnalyzeFile analyzes an uploaded PDF or image. For image uploads
// whose resolved provider supports direct image analysis, that path is
// tried first; any failure there falls back once to OCR extraction.
func (s *Service) AnalyzeFile(ctx context.Context, filename, contentType string, data []byte, providerID string) (Analysis, error) {
	client, err := s.registry.Resolve(providerID)
	if err != nil {
		return Analysis{}, err
	}

	isImage := extract.IsImage(contentType, filename)
	if isImage {
		if _, ok := client.(provider.ImageAnalyzer); ok {
			s.log.Info("using direct image analysis", "provider", client.Name(), "filename", filename)
			analysis, err := s.analyzeImageWith(ctx, client, data, contentType)
			if err == nil {
				return analysis, nil
			}
			// Single fallback to the extraction path, no retry loop.
			s.log.Error("direct image analysis failed, falling back to OCR", "err", err)
		}
	}

	var text string
	switch {
	case extract.IsPDF(contentType, filename):
		s.log.Info("processing as PDF", "filename", filename)
		text, err = s.docs.Document(data)
	case isImage:
		s.log.Info("processing as image (OCR)", "filename", filename)
		text, err = s.images.Image(ctx, data)
	default:
		return Analysis{}, ErrUnsupportedFile
	}
	if err != nil {
		return Analysis{}, err
	}
	if isBlank(text) {
		return Analysis{}, ErrEmptyInput
	}
	return s.analyzeWith(ctx, client, text)
}

// FollowUp answers a question about a previously analyzed report. No
// extraction is involved; the provider is resolved once and delegated
// to directly.
func (s *Service) FollowUp(ctx context.Context, reportText, priorSummary, question string, history []provider.ChatMessage, providerID string) (string, error) {
	client, err := s.registry.Resolve(providerID)
	if err != nil {
		return "", err
	}
	return client.AnswerFollowUp(ctx, reportText, priorSummary, question, history)
}

// Available reports whether at least one registered provider is usable.
func (s *Service) Available(ctx context.Context) bool {
	return s.registry.Available(ctx)
}

// Providers lists registered provider names and the default.
func (s *Service) Providers() ([]string, string) {
	return s.registry.Names(), s.registry.Default()
}

func (s *Service) analyzeWith(ctx context.Context, client provider.Client, reportText string) (Analysis, error) {
	key := cache.AnalysisKey(client.Name(), reportText)
	if cached, err := s.cache.GetAnalysis(ctx, key); err == nil && cached != nil {
		s.log.Info("analysis cache hit", "provider", client.Name())
		return s.newAnalysis(client.Name(), *cached, reportText), nil
	}

	raw, err := client.AnalyzeReport(ctx, reportText)
	if err != nil {
		return Analysis{}, err
	}
	summary := s.parse(raw, client.Name())

	if err := s.cache.SetAnalysis(ctx, key, &summary, s.cacheTTL); err != nil {
		// Cache write failure is not a request failure.
		s.log.Warn("failed to cache analysis", "err", err)
	}
	return s.newAnalysis(client.Name(), summary, reportText), nil
}

func (s *Service) analyzeImageWith(ctx context.Context, client provider.Client, data []byte, mediaType string) (Analysis, error) {
	raw, err := provider.AnalyzeImage(ctx, client, data, mediaType)
	if err != nil {
		return Analysis{}, err
	}
	summary := s.parse(raw, client.Name())
	return s.newAnalysis(client.Name(), summary, "[Direct Image Analysis by "+client.Name()+"]"), nil
}

// parse normalizes raw provider output and decodes it; malformed
// output degrades to the fallback summary instead of failing.
func (s *Service) parse(raw, providerName string) report.Summary {
	normalized := sanitize.Normalize(raw)
	summary := report.Parse(normalized, raw)
	s.log.Info("analysis parsed", "provider", providerName,
		"findings", len(summary.Findings),
		"questions", len(summary.DiscussionQuestions))
	return summary
}

func (s *Service) newAnalysis(providerName string, summary report.Summary, reportText string) Analysis {
	summary.EnsureLists()
	return Analysis{
		ID:         uuid.New(),
		Provider:   providerName,
		Summary:    summary,
		ReportText: reportText,
	}
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
