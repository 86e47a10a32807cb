package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func setupRateLimitApp(t *testing.T, limit int) (*fiber.App, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	app.Post("/login", LoginRateLimit(cache, limit), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, mr, cleanup
}

func postLogin(t *testing.T, app *fiber.App, body string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestLoginRateLimitBlocksAfterLimit(t *testing.T) {
	app, _, cleanup := setupRateLimitApp(t, 3)
	defer cleanup()

	body := `{"phone":"+1555000300"}`
	for i := 0; i < 3; i++ {
		if status := postLogin(t, app, body); status != fiber.StatusOK {
			t.Fatalf("attempt %d: expected %d got %d", i, fiber.StatusOK, status)
		}
	}

	if status := postLogin(t, app, body); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected %d got %d", fiber.StatusTooManyRequests, status)
	}
}

func TestLoginRateLimitIsPerPhone(t *testing.T) {
	app, _, cleanup := setupRateLimitApp(t, 1)
	defer cleanup()

	if status := postLogin(t, app, `{"phone":"+1555000301"}`); status != fiber.StatusOK {
		t.Fatalf("first phone: expected ok got %d", status)
	}
	if status := postLogin(t, app, `{"phone":"+1555000302"}`); status != fiber.StatusOK {
		t.Fatalf("second phone must have its own window, got %d", status)
	}
}

func TestLoginRateLimitWindowExpires(t *testing.T) {
	app, mr, cleanup := setupRateLimitApp(t, 1)
	defer cleanup()

	body := `{"phone":"+1555000303"}`
	if status := postLogin(t, app, body); status != fiber.StatusOK {
		t.Fatalf("expected ok got %d", status)
	}
	if status := postLogin(t, app, body); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected limit hit, got %d", status)
	}

	mr.FastForward(loginRateLimitWindow)

	if status := postLogin(t, app, body); status != fiber.StatusOK {
		t.Fatalf("expected new window after expiry, got %d", status)
	}
}
