package config

import (
	"SkinLens/database/postgres"
	skinHandler "SkinLens/internal/api/skin/handler"
	skinRepository "SkinLens/internal/api/skin/repository"
	skinService "SkinLens/internal/api/skin/service"
	"SkinLens/internal/middleware"
	"SkinLens/pkg/facepp"
	"SkinLens/pkg/gemini"
	"SkinLens/pkg/openai"
	"SkinLens/pkg/redis"
	"SkinLens/pkg/s3"
	"SkinLens/pkg/utils"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine       *fiber.App
	db           *sqlx.DB
	log          *logrus.Logger
	middleware   middleware.Middleware
	validator    *validator.Validate
	utils        utils.IUtils
	handlers     []handler
	redisServer  redis.IRedis
	adviceClient gemini.IGemini
	s3Client     s3.ItfS3
	faceppClient facepp.IFacepp
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.utils == nil {
		server.utils = utils.New()
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

// WithRedisServer enables the report cache. A nil client leaves it disabled.
func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		if s.utils == nil {
			s.utils = utils.New()
		}

		reqPerSecond := envFloat("RATE_LIMIT_PER_SECOND", 5)
		burst := int(envFloat("RATE_LIMIT_BURST", 10))

		s.middleware = middleware.New(s.log, s.utils, reqPerSecond, burst)
		return nil
	}
}

// WithS3Client enables photo uploads. Without AWS_BUCKET_NAME analyses are
// stored without a photo.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		if os.Getenv("AWS_BUCKET_NAME") == "" {
			if s.log != nil {
				s.log.Warn("AWS_BUCKET_NAME not set, photo upload disabled")
			}
			return nil
		}

		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

// WithGeminiClient enables personalized advice. A missing key only disables
// the advice endpoint.
func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		client, err := gemini.NewGeminiClient()
		if err != nil {
			if s.log != nil {
				s.log.Warnf("Gemini client unavailable, personalized advice disabled: %v", err)
			}
			return nil
		}
		s.adviceClient = client
		return nil
	}
}

// WithOpenAIClient backs personalized advice with ChatGPT when no Gemini
// client was configured and OPENAI_API_KEY is set.
func WithOpenAIClient() ServerOption {
	return func(s *Server) error {
		if s.adviceClient != nil {
			return nil
		}

		client, err := openai.NewChatGPT()
		if err != nil {
			if s.log != nil {
				s.log.Debugf("OpenAI client not configured: %v", err)
			}
			return nil
		}
		s.adviceClient = client
		return nil
	}
}

func WithFaceppClient() ServerOption {
	return func(s *Server) error {
		client, err := facepp.NewFaceppClient()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Face++ client: %v", err)
			}
			return fmt.Errorf("failed to create detection client: %w", err)
		}
		s.faceppClient = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Skin Domain
	skinRepo := skinRepository.New(s.db, s.log)
	skinServices := skinService.NewSkinService(s.log, skinRepo, s.faceppClient, s.redisServer, s.s3Client, s.adviceClient, s.utils)
	skinHandlers := skinHandler.New(s.log, s.validator, s.middleware, skinServices, s.utils)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, skinHandlers)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) Shutdown(timeout time.Duration) error {
	err := s.engine.ShutdownWithTimeout(timeout)

	if closer, ok := s.adviceClient.(interface{ Close() }); ok {
		closer.Close()
	}
	if s.db != nil {
		if dbErr := s.db.Close(); dbErr != nil && err == nil {
			err = dbErr
		}
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
