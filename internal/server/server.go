package server

import (
	"github.com/gin-gonic/gin"
	"github.com/yctimlin/openai-mimic/internal/catalog"
	"github.com/yctimlin/openai-mimic/internal/config"
	"github.com/yctimlin/openai-mimic/internal/upstream"
	"go.uber.org/zap"
)

const serviceName = "OpenAI-Compatible API Mimic"

// Server represents the API server
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	router   *gin.Engine
	upstream *upstream.Client
	catalog  *catalog.Catalog
	version  string
}

// New creates a new server instance
func New(cfg *config.Config, logger *zap.Logger, version string) (*Server, error) {
	gin.SetMode(cfg.Server.Mode)

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		router:   gin.New(),
		upstream: upstream.NewClient(cfg.Upstream, logger),
		catalog:  catalog.New(),
		version:  version,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Router returns the gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggerMiddleware())

	if s.cfg.Security.EnableCORS {
		s.router.Use(s.corsMiddleware())
	}
}

func (s *Server) setupRoutes() {
	// Health/info
	s.router.GET("/", s.rootInfo)
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/ping", s.ping)

	// OpenAI-compatible API
	api := s.router.Group("/v1")
	{
		api.POST("/chat/completions", s.chatCompletions)
		api.POST("/embeddings", s.createEmbedding)
		api.GET("/models", s.listModels)
		api.GET("/models/:id", s.getModel)
	}
}
