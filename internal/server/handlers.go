package server

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yctimlin/openai-mimic/internal/catalog"
	"github.com/yctimlin/openai-mimic/internal/mapper"
	"github.com/yctimlin/openai-mimic/internal/models"
	"github.com/yctimlin/openai-mimic/internal/stream"
	"github.com/yctimlin/openai-mimic/internal/upstream"
	"go.uber.org/zap"
)

// ==================== Health ====================

func (s *Server) rootInfo(c *gin.Context) {
	c.JSON(200, gin.H{
		"service": serviceName,
		"version": s.version,
		"status":  "healthy",
	})
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

func (s *Server) ping(c *gin.Context) {
	c.JSON(200, gin.H{"message": "pong"})
}

// ==================== Chat completions ====================

func (s *Server) chatCompletions(c *gin.Context) {
	var req models.ChatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.validationError(c, "Invalid request: "+err.Error())
		return
	}

	if req.Stream && !s.catalog.IsStreamingSupported(req.Model) {
		s.validationError(c, fmt.Sprintf("Streaming is not supported for model: %s", req.Model))
		return
	}

	payload := mapper.BuildChatPayload(&req)
	ctx := c.Request.Context()

	token, err := s.upstream.AcquireToken(ctx)
	if err != nil {
		s.upstreamError(c, err)
		return
	}

	result, err := s.upstream.CallChat(ctx, token, payload)
	if err != nil {
		s.upstreamError(c, err)
		return
	}

	if req.Stream {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		if err := stream.New(req.Model, result).Emit(ctx, c.Writer); err != nil {
			// Client went away mid-stream; nothing left to clean up.
			s.logger.Warn("Stream emission stopped",
				zap.String("model", req.Model),
				zap.Error(err))
		}
		return
	}

	c.JSON(200, mapper.BuildChatResponse(req.Model, result))
}

// ==================== Embeddings ====================

func (s *Server) createEmbedding(c *gin.Context) {
	var req models.EmbeddingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.validationError(c, "Invalid request: "+err.Error())
		return
	}

	inputs, err := mapper.NormalizeEmbeddingInput(req.Input)
	if err != nil {
		s.validationError(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	token, err := s.upstream.AcquireToken(ctx)
	if err != nil {
		s.upstreamError(c, err)
		return
	}

	// One upstream call per input; result index matches input position.
	data := make([]models.EmbeddingData, 0, len(inputs))
	for i, text := range inputs {
		params := mapper.BuildEmbeddingParams(&req, text)
		result, err := s.upstream.CallEmbedding(ctx, token, params)
		if err != nil {
			s.upstreamError(c, err)
			return
		}
		data = append(data, models.EmbeddingData{
			Object:    "embedding",
			Embedding: result.Data.Content,
			Index:     i,
		})
	}

	model := req.Model
	if model == "" {
		model = "text-embedding-ada-002"
	}

	estimated := mapper.EstimateTokens(inputs)
	c.JSON(200, models.EmbeddingResponse{
		Object: "list",
		Data:   data,
		Model:  model,
		Usage: &models.Usage{
			PromptTokens: estimated,
			TotalTokens:  estimated,
		},
	})
}

// ==================== Models ====================

func (s *Server) listModels(c *gin.Context) {
	c.JSON(200, models.ModelList{
		Object: "list",
		Data:   s.catalog.List(),
	})
}

func (s *Server) getModel(c *gin.Context) {
	id := c.Param("id")

	m, err := s.catalog.Get(id)
	if err != nil {
		if errors.Is(err, catalog.ErrModelNotFound) {
			c.JSON(404, models.ErrorResponse{Error: models.ErrorDetail{
				Message: fmt.Sprintf("Model '%s' not found", id),
				Type:    "invalid_request_error",
				Code:    "model_not_found",
			}})
			return
		}
		s.upstreamError(c, err)
		return
	}

	c.JSON(200, m)
}

// ==================== Error mapping ====================

func (s *Server) validationError(c *gin.Context, message string) {
	c.JSON(400, models.ErrorResponse{Error: models.ErrorDetail{
		Message: message,
		Type:    "invalid_request_error",
	}})
}

// upstreamError maps the backend error taxonomy onto HTTP statuses:
// 502 for auth/upstream failures, 504 for transport failures.
func (s *Server) upstreamError(c *gin.Context, err error) {
	var authErr *upstream.AuthError
	var upErr *upstream.UpstreamError
	var netErr *upstream.NetworkError

	status := 500
	code := "internal_error"
	switch {
	case errors.As(err, &authErr):
		status = 502
		code = "upstream_auth_error"
	case errors.As(err, &upErr):
		status = 502
		code = "upstream_error"
	case errors.As(err, &netErr):
		status = 504
		code = "upstream_unreachable"
	}

	s.logger.Error("Upstream request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.Error(err))

	c.JSON(status, models.ErrorResponse{Error: models.ErrorDetail{
		Message: err.Error(),
		Type:    "upstream_error",
		Code:    code,
	}})
}
