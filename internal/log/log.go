// Package log writes one JSON line per event through the standard logger.
// Request fields are filled in when a fiber context is passed; background
// work (checkout compensation, mail) passes nil.
package log

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"myshop/internal/domain"
)

// IdentityKey is the fiber Locals key holding the caller's domain.Identity.
const IdentityKey = "identity"

type level string

const (
	levelInfo  level = "info"
	levelAudit level = "audit"
	levelWarn  level = "warn"
	levelError level = "error"
)

type request struct {
	ReqID     string `json:"req_id,omitempty"`
	IP        string `json:"ip,omitempty"`
	Method    string `json:"method,omitempty"`
	Path      string `json:"path,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Status    int    `json:"status,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type entry struct {
	request

	TS     string         `json:"ts"`
	Level  level          `json:"level"`
	Action string         `json:"action,omitempty"`
	Err    string         `json:"err,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

func fromCtx(c *fiber.Ctx) request {
	if c == nil {
		return request{}
	}
	r := request{
		IP:     c.IP(),
		Method: c.Method(),
		Path:   c.Path(),
		Status: c.Response().StatusCode(),
	}
	r.ReqID, _ = c.Locals("requestid").(string)
	if id, ok := c.Locals(IdentityKey).(domain.Identity); ok {
		r.UserID = id.UID
	}
	if start, ok := c.Locals("start").(time.Time); ok {
		r.LatencyMs = time.Since(start).Milliseconds()
	}
	return r
}

func emit(lv level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry{
		TS:      time.Now().UTC().Format(time.RFC3339),
		Level:   lv,
		Action:  action,
		request: fromCtx(c),
		Fields:  fields,
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

func Info(c *fiber.Ctx, action string, fields map[string]any) { emit(levelInfo, c, action, nil, fields) }

// Audit records a state change made on behalf of the caller.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	emit(levelAudit, c, action, nil, fields)
}

// Security records rejected input, auth failures and rate limit hits.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	emit(levelWarn, c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	emit(levelError, c, action, err, fields)
}

// Tee sends the standard logger to stdout and path. The returned closer
// releases the file; it is a no-op when path is empty.
func Tee(path string) (io.Closer, error) {
	if path == "" {
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return io.NopCloser(nil), err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return f, nil
}
