package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"sitegen/internal/catalog"
	"sitegen/internal/fileparse"
	"sitegen/internal/models"
	"sitegen/internal/prompt"
	"sitegen/internal/stream"
	"sitegen/internal/transport"
)

func (s *Server) handleHealth(c echo.Context) error {
	infos := catalog.ListModels()

	providerSet := make(map[string]struct{})
	availableModels := 0
	for _, m := range infos {
		if m.Available {
			providerSet[m.ProviderName] = struct{}{}
			availableModels++
		}
	}

	availableProviders := make([]string, 0, len(providerSet))
	for _, p := range catalog.Providers() {
		if _, ok := providerSet[p.Name]; ok {
			availableProviders = append(availableProviders, p.Name)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"ok":                 true,
		"status":             "healthy",
		"availableProviders": availableProviders,
		"totalModels":        len(infos),
		"availableModels":    availableModels,
	})
}

func (s *Server) handleModels(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"ok":     true,
		"models": catalog.ListModels(),
	})
}

// handleAskAI runs a generation. Validation failures are synchronous
// 4xx; unknown model keys and missing credentials fail before the
// stream opens as 5xx JSON. Once stream headers are committed the
// status stays 200 and failures travel as terminal error events.
func (s *Server) handleAskAI(c echo.Context) error {
	var req models.GenerationRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	if strings.TrimSpace(req.Prompt) == "" {
		return requestError{Status: http.StatusBadRequest, Message: "Missing required field: prompt"}
	}

	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		return requestError{Status: http.StatusBadRequest, Message: err.Error()}
	}

	modelKey := req.ModelKey
	if modelKey == "" {
		modelKey = models.DefaultModelKey
	}

	resolved, err := catalog.ResolveStrict(modelKey)
	if err != nil {
		return requestError{Status: http.StatusInternalServerError, Message: err.Error()}
	}

	ctx := c.Request().Context()
	if d := s.cfg.Stream.MaxDuration; d > 0 {
		// The deadline must cover the upstream request itself, not just
		// the relay loop: a provider that stalls mid-stream is only
		// interrupted through the context its connection was opened with.
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	messages := prompt.Compose(req, mode)

	src, err := s.clients.Stream(ctx, resolved, messages)
	if err != nil {
		return toHTTPError(err)
	}
	defer src.Close()

	sink, err := stream.NewSSESink(c.Response().Writer)
	if err != nil {
		return requestError{Status: http.StatusInternalServerError, Message: "server does not support streaming responses"}
	}

	limits := stream.Limits{
		MaxBytes:    s.cfg.Stream.MaxBytes,
		MaxDuration: s.cfg.Stream.MaxDuration,
	}
	if err := stream.Relay(ctx, src, sink, mode, limits); err != nil {
		slog.Error("generation stream ended abnormally",
			"model", modelKey,
			"mode", mode,
			"err", err,
		)
	}
	return nil
}

func toHTTPError(err error) error {
	if errors.Is(err, transport.ErrNoCredential) {
		return requestError{Status: http.StatusInternalServerError, Message: err.Error()}
	}

	var upstream *transport.UpstreamError
	if errors.As(err, &upstream) {
		return requestError{Status: http.StatusBadGateway, Message: upstream.Error()}
	}

	return requestError{Status: http.StatusBadGateway, Message: "upstream provider error"}
}

type parseFilesRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleParseFiles(c echo.Context) error {
	var req parseFilesRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	if req.Content == "" {
		return requestError{Status: http.StatusBadRequest, Message: "Missing required field: content"}
	}

	files := fileparse.Parse(req.Content)
	if files == nil {
		files = []fileparse.File{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ok":    true,
		"files": files,
	})
}

type fetchDesignRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleFetchDesign(c echo.Context) error {
	var req fetchDesignRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	if req.URL == "" {
		return requestError{Status: http.StatusBadRequest, Message: "Missing required field: url"}
	}

	html, err := s.fetcher.Fetch(c.Request().Context(), req.URL)
	if err != nil {
		return requestError{Status: http.StatusInternalServerError, Message: err.Error()}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"ok":   true,
		"html": html,
	})
}

type deployRequest struct {
	HTML        string           `json:"html,omitempty"`
	Files       []fileparse.File `json:"files,omitempty"`
	ProjectName string           `json:"projectName"`
	Description string           `json:"description,omitempty"`
}

// Deploy endpoints are stub collaborators: they accept the documented
// shapes and acknowledge with fabricated identifiers without touching
// any external host.
func (s *Server) handlePushToHF(c echo.Context) error {
	var req deployRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	if strings.TrimSpace(req.ProjectName) == "" {
		return requestError{Status: http.StatusBadRequest, Message: "Missing required field: projectName"}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"ok":          true,
		"projectName": req.ProjectName,
		"spaceId":     uuid.NewString(),
		"message":     fmt.Sprintf("Project %q prepared for Hugging Face Spaces", req.ProjectName),
	})
}

func (s *Server) handleAutoDeploy(c echo.Context) error {
	var req deployRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	if strings.TrimSpace(req.ProjectName) == "" {
		return requestError{Status: http.StatusBadRequest, Message: "Missing required field: projectName"}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"ok":     true,
		"saveId": uuid.NewString(),
		"status": "deployed",
	})
}
