package config

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewServerRequiresFiberAndLogger(t *testing.T) {
	if _, err := NewServer(WithLogger(quietLogger())); err == nil {
		t.Fatal("expected error without fiber app")
	}
	if _, err := NewServer(WithFiber(fiber.New())); err == nil {
		t.Fatal("expected error without logger")
	}
}

func TestWithMiddlewareNeedsLogger(t *testing.T) {
	if _, err := NewServer(WithMiddleware(), WithFiber(fiber.New()), WithLogger(quietLogger())); err == nil {
		t.Fatal("expected middleware option to fail before the logger is set")
	}
}

func TestOptionalClientsStayDisabled(t *testing.T) {
	t.Setenv("AWS_BUCKET_NAME", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	server, err := NewServer(
		WithFiber(fiber.New()),
		WithLogger(quietLogger()),
		WithS3Client(),
		WithGeminiClient(),
		WithOpenAIClient(),
		WithRedisServer(nil),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.s3Client != nil || server.adviceClient != nil || server.redisServer != nil {
		t.Fatal("optional clients should be nil when unconfigured")
	}
	if server.utils == nil || server.validator == nil {
		t.Fatal("utils and validator should default")
	}
}

func TestEnvFloat(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"", 5},
		{"2.5", 2.5},
		{"abc", 5},
		{"-1", 5},
	}

	for _, tt := range tests {
		t.Setenv("RATE_LIMIT_PER_SECOND", tt.raw)
		if got := envFloat("RATE_LIMIT_PER_SECOND", 5); got != tt.want {
			t.Fatalf("envFloat(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNewFiberUsesJSONErrors(t *testing.T) {
	app := NewFiber(quietLogger())

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); ct != fiber.MIMEApplicationJSON {
		t.Fatalf("expected JSON error body, got %q", ct)
	}
}

func TestNewValidatorUsesJSONNames(t *testing.T) {
	type payload struct {
		ImageBase64 string `json:"image_base64" validate:"required"`
	}

	err := NewValidator().Struct(payload{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := err.Error(); !strings.Contains(got, "image_base64") {
		t.Fatalf("expected json field name in %q", got)
	}
}
