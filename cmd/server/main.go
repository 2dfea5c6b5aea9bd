package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"medreader/internal/analyzer"
	"medreader/internal/app"
	"medreader/internal/extract"
	"medreader/internal/httputil"
	"medreader/internal/provider"
)

type analyzeTextRequest struct {
	ReportText string `json:"reportText" validate:"required"`
	Provider   string `json:"provider" validate:"omitempty,max=64"`
}

type chatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

type chatRequest struct {
	ReportText          string        `json:"reportText" validate:"required"`
	AnalysisSummary     string        `json:"analysisSummary"`
	Question            string        `json:"question" validate:"required,min=1,max=2000"`
	ConversationHistory []chatMessage `json:"conversationHistory" validate:"omitempty,dive"`
	Provider            string        `json:"provider" validate:"omitempty,max=64"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Cache.Close()

	r := httputil.NewRouter(deps.Log)

	r.Post("/api/reports/analyze", analyzeFileHandler(deps))
	r.Post("/api/reports/analyze/text", analyzeTextHandler(deps))
	r.Post("/api/reports/chat", chatHandler(deps))
	r.Get("/api/health", healthHandler(deps))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("report analysis service listening", "addr", addr, "default_provider", deps.Registry.Default())
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server error", "err", err)
	}
}

func analyzeFileHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > deps.Config.MaxUploadSize {
			httputil.Fail(deps.Log, w, "file exceeds upload limit", errors.New("request body too large"), http.StatusRequestEntityTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, deps.Config.MaxUploadSize)
		if err := r.ParseMultipartForm(deps.Config.MaxUploadSize); err != nil {
			status := http.StatusBadRequest
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				status = http.StatusRequestEntityTooLarge
			}
			httputil.Fail(deps.Log, w, "invalid multipart upload", err, status)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "missing file field", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				httputil.Fail(deps.Log, w, "file exceeds upload limit", err, http.StatusRequestEntityTooLarge)
				return
			}
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}

		filename := filepath.Base(header.Filename)
		contentType := header.Header.Get("Content-Type")
		res, err := deps.Analyzer.AnalyzeFile(r.Context(), filename, contentType, data, r.FormValue("provider"))
		if err != nil {
			failAnalysis(deps.Log, w, err)
			return
		}

		writeAnalysis(w, res)
	}
}

func analyzeTextHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		res, err := deps.Analyzer.AnalyzeText(r.Context(), req.ReportText, req.Provider)
		if err != nil {
			failAnalysis(deps.Log, w, err)
			return
		}

		writeAnalysis(w, res)
	}
}

func chatHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		history := make([]provider.ChatMessage, 0, len(req.ConversationHistory))
		for _, m := range req.ConversationHistory {
			history = append(history, provider.ChatMessage{Role: m.Role, Content: m.Content})
		}

		answer, err := deps.Analyzer.FollowUp(r.Context(), req.ReportText, req.AnalysisSummary, req.Question, history, req.Provider)
		if err != nil {
			failAnalysis(deps.Log, w, err)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"answer":  answer,
		})
	}
}

func healthHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, defaultName := deps.Analyzer.Providers()
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status": "UP",
			"aiModel": map[string]any{
				"available": deps.Analyzer.Available(r.Context()),
				"provider":  defaultName,
				"providers": names,
			},
		})
	}
}

func writeAnalysis(w http.ResponseWriter, res analyzer.Analysis) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"analysisId": res.ID,
		"analysis":   res.Summary,
		"reportText": res.ReportText,
	})
}

// failAnalysis maps analysis errors to client or server failures.
func failAnalysis(log *slog.Logger, w http.ResponseWriter, err error) {
	var unsupported *provider.UnsupportedProviderError
	switch {
	case errors.Is(err, analyzer.ErrEmptyInput):
		httputil.Fail(log, w, "report text is empty", err, http.StatusBadRequest)
	case errors.As(err, &unsupported):
		httputil.Fail(log, w, fmt.Sprintf("unsupported AI provider: %s", unsupported.Name), err, http.StatusBadRequest)
	case errors.Is(err, analyzer.ErrUnsupportedFile):
		httputil.Fail(log, w, "unsupported file type, upload a PDF or an image", err, http.StatusBadRequest)
	case errors.Is(err, extract.ErrUnreadableDocument):
		httputil.Fail(log, w, "could not read text from the document", err, http.StatusBadRequest)
	case errors.Is(err, extract.ErrUnrecognizableImage):
		httputil.Fail(log, w, "could not recognize text in the image", err, http.StatusBadRequest)
	default:
		httputil.Fail(log, w, "analysis failed", err, http.StatusBadGateway)
	}
}
