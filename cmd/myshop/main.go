package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"google.golang.org/api/option"

	"myshop/internal/auth"
	"myshop/internal/blob"
	"myshop/internal/checkout"
	"myshop/internal/config"
	"myshop/internal/domain"
	fs "myshop/internal/firestore"
	"myshop/internal/http/handlers"
	applog "myshop/internal/log"
	"myshop/internal/notify"
	"myshop/internal/payment"
	"myshop/internal/repos"
	"myshop/internal/services"
	"myshop/internal/state"
)

// stores is the backend set the repository is built over.
type stores struct {
	catalog  services.CatalogStore
	users    services.UserStore
	cart     services.LineStore
	wishlist services.LineStore
	orders   services.OrderStore
}

func gcpOptions(cfg config.Config) []option.ClientOption {
	if cfg.GoogleCredentials == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.GoogleCredentials)}
}

func openStores(ctx context.Context, cfg config.Config, db *sqlx.DB) (stores, func() error, error) {
	if cfg.Store != config.StoreFirestore {
		return stores{
			catalog:  repos.NewCatalogRepo(db),
			users:    repos.NewUserRepo(db),
			cart:     repos.NewCartRepo(db),
			wishlist: repos.NewWishlistRepo(db),
			orders:   repos.NewOrderRepo(db),
		}, func() error { return nil }, nil
	}
	client, err := fs.NewClient(ctx, cfg.GCPProject, cfg.GoogleCredentials)
	if err != nil {
		return stores{}, nil, err
	}
	return stores{
		catalog:  fs.NewCatalog(client),
		users:    fs.NewUsers(client),
		cart:     fs.NewCart(client),
		wishlist: fs.NewWishlist(client),
		orders:   fs.NewOrders(client),
	}, client.Close, nil
}

func openAuth(ctx context.Context, cfg config.Config, db *sqlx.DB) (services.AuthProvider, error) {
	if cfg.Auth != config.AuthFirebase {
		return auth.NewLocal(repos.NewSessionRepo(db), cfg.JWTSecret, cfg.SessionTTL), nil
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.GCPProject}, gcpOptions(cfg)...)
	if err != nil {
		return nil, err
	}
	admin, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return auth.NewFirebase(admin, cfg.FirebaseAPIKey, ""), nil
}

func openBlobs(ctx context.Context, cfg config.Config, mediaDir string) (services.BlobStore, error) {
	switch cfg.Blob {
	case config.BlobGCS:
		client, err := storage.NewClient(ctx, gcpOptions(cfg)...)
		if err != nil {
			return nil, err
		}
		return blob.NewGCS(client, cfg.GCSBucket), nil
	case config.BlobS3:
		s3, err := blob.NewS3(ctx, cfg.S3Bucket)
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	return blob.NewLocal(mediaDir, strings.TrimRight(cfg.BaseURL, "/")+"/media"), nil
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Optional file logging
	logFile, err := applog.Tee(cfg.LogFile)
	if err != nil {
		log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
	}
	defer logFile.Close()

	if cfg.RazorpaySecretName != "" && cfg.RazorpayKeySecret == "" {
		read, closeSM, err := config.SecretManager(ctx)
		if err != nil {
			log.Fatalf("[config] secret manager: %v", err)
		}
		if err := cfg.ResolveSecrets(ctx, read); err != nil {
			log.Fatal(err)
		}
		_ = closeSM()
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// Sessions and payment reconciliations always live in the local database.
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	st, closeStores, err := openStores(ctx, cfg, db)
	if err != nil {
		log.Fatalf("[store] %v", err)
	}
	defer closeStores()

	provider, err := openAuth(ctx, cfg, db)
	if err != nil {
		log.Fatalf("[auth] %v", err)
	}

	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	blobs, err := openBlobs(ctx, cfg, mediaDir)
	if err != nil {
		log.Fatalf("[blob] %v", err)
	}

	repo := services.NewRepo(st.catalog, st.users, st.cart, st.wishlist, st.orders, provider, blobs)
	reg := state.NewRegistry(repo)
	recon := repos.NewReconcileRepo(db)

	var mailer checkout.Mailer = notify.Log{}
	if cfg.SendGridKey != "" {
		mailer = notify.NewSendGrid(cfg.SendGridKey, cfg.MailFrom)
	}

	var bridge *checkout.Bridge
	if cfg.PaymentsEnabled() {
		gw := payment.NewGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL)
		bridge = checkout.NewBridge(gw, func(id domain.Identity) checkout.Cart { return reg.For(id).Cart },
			mailer, recon, cfg.Currency, cfg.Merchant)
		bridge.Key = cfg.RazorpayKeyID
	} else {
		log.Printf("[checkout] payments disabled: RAZORPAY_KEY_ID or secret missing")
	}

	// Templates & app
	engine := html.New("./web/templates", ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    6 << 20, // profile images are capped at 5 MiB
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(helmet.New(helmet.Config{
		// the hosted checkout loads the gateway script
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline' https://checkout.razorpay.com; frame-src https://api.razorpay.com https://checkout.razorpay.com",
	}))
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("start", time.Now())
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/media/") || strings.HasPrefix(p, "/api/v1/stream/")
		},
	}))

	// ---------- Media ----------
	log.Printf("[static] /media -> %s", mediaDir)
	// Guarded media to avoid traversal
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(mediaDir, clean), true)
	})

	// ---------- App handlers ----------
	handlers.Routes(app, handlers.NewDeps(repo, reg, bridge, recon, cfg))

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Page not found"})
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Printf("[server] shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
