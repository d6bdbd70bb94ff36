package facepp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	jsoniter "github.com/json-iterator/go"
)

const (
	defaultSkinURL = "https://api-us.faceplusplus.com/facepp/v1/skinanalyze_advanced"
	defaultTimeout = 15 * time.Second
)

var (
	ErrDetectionFailed = errors.New("skin detection request failed")
	ErrMissingImage    = errors.New("image is required")
)

type IFacepp interface {
	// AnalyzeSkin returns the raw response document of the skin analysis
	// endpoint. Parsing is left to the caller.
	AnalyzeSkin(ctx context.Context, base64Image string) ([]byte, error)
}

type Config struct {
	APIKey    string
	APISecret string
	URL       string
	Timeout   time.Duration
}

type faceppClient struct {
	cfg Config
}

func NewFaceppClient() (IFacepp, error) {
	cfg := Config{
		APIKey:    os.Getenv("FACEPP_API_KEY"),
		APISecret: os.Getenv("FACEPP_API_SECRET"),
		URL:       os.Getenv("FACEPP_SKIN_URL"),
	}

	if raw := os.Getenv("FACEPP_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid FACEPP_TIMEOUT: %w", err)
		}
		cfg.Timeout = timeout
	}

	return New(cfg)
}

func New(cfg Config) (IFacepp, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("facepp API key and secret are required")
	}
	if cfg.URL == "" {
		cfg.URL = defaultSkinURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &faceppClient{cfg: cfg}, nil
}

func (c *faceppClient) AnalyzeSkin(ctx context.Context, base64Image string) ([]byte, error) {
	if base64Image == "" {
		return nil, ErrMissingImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("api_key", c.cfg.APIKey)
	args.Set("api_secret", c.cfg.APISecret)
	args.Set("image_base64", base64Image)

	agent := fiber.Post(c.cfg.URL).
		Timeout(timeout).
		MultipartForm(args)

	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("failed to prepare skin detection request: %w", err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrDetectionFailed, errors.Join(errs...))
	}

	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		msg := jsoniter.Get(body, "error_message").ToString()
		if msg == "" {
			msg = utils.StatusMessage(code)
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrDetectionFailed, code, msg)
	}

	return body, nil
}
