package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"myshop/internal/auth"
	"myshop/internal/blob"
	"myshop/internal/checkout"
	"myshop/internal/config"
	"myshop/internal/domain"
	"myshop/internal/http/handlers"
	"myshop/internal/notify"
	"myshop/internal/payment"
	"myshop/internal/repos"
	"myshop/internal/services"
	"myshop/internal/state"
)

const gatewaySecret = "shh"

type testApp struct {
	app  *fiber.App
	db   *sqlx.DB
	repo *services.Repo
	deps *handlers.Deps
}

// gatewayServer answers the two payment REST calls the bridge makes.
func gatewayServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch {
		case r.URL.Path == "/v1/orders":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "order_" + body["receipt"].(string), "amount": body["amount"],
				"currency": body["currency"], "receipt": body["receipt"], "status": "created",
			})
		case strings.HasSuffix(r.URL.Path, "/refund"):
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "rfnd_1", "amount": body["amount"], "status": "processed"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newApp(t *testing.T, mutate ...func(*handlers.Deps)) *testApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{SessionTTL: time.Hour, Currency: "INR", Merchant: "MyShop", AdminEmails: []string{"ops@shop.test"}}
	provider := auth.NewLocal(repos.NewSessionRepo(db), "test-secret", time.Hour)
	provider.Cost = 4 // bcrypt.MinCost keeps the tests fast
	repo := services.NewRepo(repos.NewCatalogRepo(db), repos.NewUserRepo(db), repos.NewCartRepo(db),
		repos.NewWishlistRepo(db), repos.NewOrderRepo(db), provider, blob.NewLocal(t.TempDir(), "/media"))
	reg := state.NewRegistry(repo)

	recon := repos.NewReconcileRepo(db)
	bridge := checkout.NewBridge(payment.NewGateway("rzp_test_key", gatewaySecret, gatewayServer(t).URL),
		func(id domain.Identity) checkout.Cart { return reg.For(id).Cart }, notify.Log{}, recon, cfg.Currency, cfg.Merchant)
	bridge.Key = "rzp_test_key"

	deps := handlers.NewDeps(repo, reg, bridge, recon, cfg)
	deps.Limits = handlers.Limits{}
	for _, m := range mutate {
		m(deps)
	}

	app := fiber.New(fiber.Config{
		Views:        html.New("../../web/templates", ".html"),
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20,
	})
	app.Use(requestid.New())
	app.Use(recover.New())
	handlers.Routes(app, deps)
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Page not found"})
	})
	return &testApp{app: app, db: db, repo: repo, deps: deps}
}

// call sends body as JSON with an optional bearer token and decodes the reply.
func (a *testApp) call(t *testing.T, method, path, tok string, body any) (int, map[string]any) {
	t.Helper()
	code, out, err := a.do(method, path, tok, body)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return code, out
}

// do is call without the testing.T, for use from other goroutines.
func (a *testApp) do(method, path, tok string, body any) (int, map[string]any, error) {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := a.app.Test(req, 5000)
	if err != nil {
		return 0, nil, err
	}
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	if len(out) == 0 {
		out["raw"] = string(raw)
	}
	return resp.StatusCode, out, nil
}

// signUp registers and logs in a user, returning the bearer token.
func (a *testApp) signUp(t *testing.T, email string) string {
	t.Helper()
	code, body := a.call(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"firstName": "Dana", "lastName": "Kay", "email": email,
		"password": "secret1", "confirmPassword": "secret1",
	})
	if code != fiber.StatusCreated {
		t.Fatalf("register: %d %v", code, body)
	}
	code, body = a.call(t, "POST", "/api/v1/auth/login", "", map[string]string{"email": email, "password": "secret1"})
	if code != fiber.StatusOK {
		t.Fatalf("login: %d %v", code, body)
	}
	sess := body["session"].(map[string]any)
	return sess["token"].(string)
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// captureLogs collects the JSON log lines written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	mu.Lock()
	defer mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func hasAction(entries []logEntry, action string) bool {
	for _, e := range entries {
		if e.Action == action {
			return true
		}
	}
	return false
}
