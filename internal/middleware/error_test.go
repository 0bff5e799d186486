package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
	"github.com/anirame128/fortnite-insight-dashboard/internal/models"
	"github.com/anirame128/fortnite-insight-dashboard/internal/services"
)

func TestErrorHandler_FiberError(t *testing.T) {
	logger := logging.NewNop()

	tests := []struct {
		name           string
		fiberError     *fiber.Error
		expectedStatus int
		expectedMsg    string
		expectedCode   string
	}{
		{
			name:           "BadRequest error",
			fiberError:     fiber.ErrBadRequest,
			expectedStatus: fiber.StatusBadRequest,
			expectedMsg:    "Bad Request",
			expectedCode:   "BAD_REQUEST",
		},
		{
			name:           "NotFound error",
			fiberError:     fiber.ErrNotFound,
			expectedStatus: fiber.StatusNotFound,
			expectedMsg:    "Not Found",
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "MethodNotAllowed error",
			fiberError:     fiber.ErrMethodNotAllowed,
			expectedStatus: fiber.StatusMethodNotAllowed,
			expectedMsg:    "Method Not Allowed",
			expectedCode:   "METHOD_NOT_ALLOWED",
		},
		{
			name:           "ServiceUnavailable error",
			fiberError:     fiber.ErrServiceUnavailable,
			expectedStatus: fiber.StatusServiceUnavailable,
			expectedMsg:    "Service Unavailable",
			expectedCode:   "SERVICE_UNAVAILABLE",
		},
		{
			name:           "Custom fiber error",
			fiberError:     fiber.NewError(fiber.StatusTeapot, "I'm a teapot"),
			expectedStatus: fiber.StatusTeapot,
			expectedMsg:    "I'm a teapot",
			expectedCode:   "I'M_A_TEAPOT",
		},
		{
			name:           "Unknown status",
			fiberError:     fiber.NewError(599, "odd"),
			expectedStatus: 599,
			expectedMsg:    "odd",
			expectedCode:   "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{
				ErrorHandler: ErrorHandler(logger),
			})

			app.Get("/test", func(c *fiber.Ctx) error {
				return tt.fiberError
			})

			req := httptest.NewRequest("GET", "/test", nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to test request: %v", err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, resp.StatusCode)
			}

			body, _ := io.ReadAll(resp.Body)
			var errResp models.ErrorResponse
			if err := json.Unmarshal(body, &errResp); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}

			if errResp.Error != tt.expectedMsg {
				t.Errorf("Expected message %q, got %q", tt.expectedMsg, errResp.Error)
			}
			if errResp.Code != tt.expectedCode {
				t.Errorf("Expected code %q, got %q", tt.expectedCode, errResp.Code)
			}
		})
	}
}

func TestErrorHandler_ServiceError(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logging.NewNop()),
	})

	app.Get("/test", func(c *fiber.Ctx) error {
		return fmt.Errorf("lookup: %w", services.NewServiceError(fiber.StatusBadGateway, services.CodeFetchFailed, "Failed to fetch map statistics"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != fiber.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if errResp.Error != "Failed to fetch map statistics" || errResp.Code != services.CodeFetchFailed {
		t.Errorf("Unexpected error body: %+v", errResp)
	}
}

func TestErrorHandler_GenericError(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logging.NewNop()),
	})

	// Handler that returns a generic Go error (not fiber.Error)
	app.Get("/test", func(c *fiber.Ctx) error {
		return errors.New("dial tcp 10.0.0.1:443: connection refused")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Generic errors should return 500 Internal Server Error
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", fiber.StatusInternalServerError, resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if errResp.Error != "Internal Server Error" {
		t.Errorf("Expected message 'Internal Server Error', got %q", errResp.Error)
	}
	if errResp.Code != services.CodeInternal {
		t.Errorf("Expected code %q, got %q", services.CodeInternal, errResp.Code)
	}
}

func TestErrorHandler_ResponseFormat(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logging.NewNop()),
	})

	app.Get("/test", func(c *fiber.Ctx) error {
		return fiber.ErrBadRequest
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Check content type is JSON
	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", contentType)
	}

	// Check response structure
	body, _ := io.ReadAll(resp.Body)
	var rawResp map[string]interface{}
	if err := json.Unmarshal(body, &rawResp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	// The error is a flat human-readable string next to a machine code
	if _, ok := rawResp["error"].(string); !ok {
		t.Errorf("Response 'error' should be a string, got %T", rawResp["error"])
	}
	if _, exists := rawResp["code"]; !exists {
		t.Error("Response should have 'code' field")
	}
}

func TestErrorHandler_PanicRecovery(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logging.NewNop()),
	})

	// Add recover middleware before error handler kicks in
	app.Use(func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return c.Next()
	})

	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("test panic")
	})

	req := httptest.NewRequest("GET", "/panic", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Should return 500 after panic recovery
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("Expected status 500 after panic, got %d", resp.StatusCode)
	}
}
