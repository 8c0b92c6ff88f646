package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"myshop/internal/domain"
	applog "myshop/internal/log"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldW, oldF := stdlog.Writer(), stdlog.Flags()
	stdlog.SetOutput(&buf)
	stdlog.SetFlags(0)
	t.Cleanup(func() {
		stdlog.SetOutput(oldW)
		stdlog.SetFlags(oldF)
	})
	return &buf
}

func TestEntryCarriesRequestAndUser(t *testing.T) {
	buf := capture(t)
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		c.Locals("requestid", "rid-1")
		c.Locals(applog.IdentityKey, domain.Identity{UID: "u-1"})
		applog.Error(c, "cart.remove", errors.New("boom"), map[string]any{"product": "p1"})
		return c.SendStatus(fiber.StatusNoContent)
	})
	if _, err := app.Test(httptest.NewRequest("GET", "/x", nil)); err != nil {
		t.Fatal(err)
	}

	var e map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &e); err != nil {
		t.Fatalf("not json: %q", buf.String())
	}
	if e["level"] != "error" || e["action"] != "cart.remove" || e["err"] != "boom" {
		t.Fatalf("entry: %v", e)
	}
	if e["req_id"] != "rid-1" || e["user_id"] != "u-1" || e["path"] != "/x" {
		t.Fatalf("request fields: %v", e)
	}
}

func TestNilContext(t *testing.T) {
	buf := capture(t)
	applog.Audit(nil, "checkout.begin", map[string]any{"amount": 100})
	if !strings.Contains(buf.String(), `"level":"audit"`) || strings.Contains(buf.String(), "req_id") {
		t.Fatalf("entry: %s", buf.String())
	}
}

func TestTee(t *testing.T) {
	oldW := stdlog.Writer()
	t.Cleanup(func() { stdlog.SetOutput(oldW) })

	path := filepath.Join(t.TempDir(), "app.log")
	closer, err := applog.Tee(path)
	if err != nil {
		t.Fatal(err)
	}
	applog.Info(nil, "boot", nil)
	stdlog.SetOutput(oldW)
	_ = closer.Close()

	b, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(b), `"action":"boot"`) {
		t.Fatalf("file: %q %v", b, err)
	}
}
