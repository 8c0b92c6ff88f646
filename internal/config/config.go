package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Backend choices.
const (
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
	AuthLocal      = "local"
	AuthFirebase   = "firebase"
	BlobLocal      = "local"
	BlobGCS        = "gcs"
	BlobS3         = "s3"
)

type Config struct {
	Port     string
	DBDSN    string
	MediaDir string
	LogFile  string
	BaseURL  string // public origin, used for local media URLs

	Store string
	Auth  string
	Blob  string

	JWTSecret  string
	SessionTTL time.Duration

	GCPProject        string
	GoogleCredentials string
	FirebaseAPIKey    string
	GCSBucket         string
	S3Bucket          string

	RazorpayKeyID      string
	RazorpayKeySecret  string
	RazorpaySecretName string // Secret Manager version holding the key secret
	RazorpayBaseURL    string
	Currency           string
	Merchant           string

	SendGridKey string
	MailFrom    string

	AdminEmails []string
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Load reads the environment, after merging a .env file when one exists.
func Load() Config {
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(env("SESSION_TTL", "720h"))
	if err != nil || ttl <= 0 {
		ttl = 720 * time.Hour
	}
	cfg := Config{
		Port:     env("PORT", "8080"),
		DBDSN:    env("DB_DSN", "myshop.db"),
		MediaDir: env("MEDIA_DIR", "./web/media"),
		LogFile:  env("LOG_FILE", "./myshop.log"),
		BaseURL:  strings.TrimRight(env("BASE_URL", "http://localhost:8080"), "/"),

		Store: strings.ToLower(env("STORE", StoreSQLite)),
		Auth:  strings.ToLower(env("AUTH_PROVIDER", AuthLocal)),
		Blob:  strings.ToLower(env("BLOB_STORE", BlobLocal)),

		JWTSecret:  env("JWT_SECRET", ""),
		SessionTTL: ttl,

		GCPProject:        env("GCP_PROJECT", env("GOOGLE_CLOUD_PROJECT", "")),
		GoogleCredentials: env("GOOGLE_APPLICATION_CREDENTIALS", ""),
		FirebaseAPIKey:    env("FIREBASE_API_KEY", ""),
		GCSBucket:         env("GCS_BUCKET", ""),
		S3Bucket:          env("S3_BUCKET", ""),

		RazorpayKeyID:      env("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:  env("RAZORPAY_KEY_SECRET", ""),
		RazorpaySecretName: env("RAZORPAY_SECRET_NAME", ""),
		RazorpayBaseURL:    env("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		Currency:           strings.ToUpper(env("CURRENCY", "INR")),
		Merchant:           env("MERCHANT_NAME", "MyShop"),

		SendGridKey: env("SENDGRID_API_KEY", ""),
		MailFrom:    env("MAIL_FROM", ""),

		AdminEmails: list(env("ADMIN_EMAILS", "")),
	}
	if cfg.JWTSecret == "" && cfg.Auth == AuthLocal {
		// sessions will not survive a restart
		cfg.JWTSecret = uuid.NewString()
		log.Printf("[config] JWT_SECRET not set, using an ephemeral secret")
	}
	log.Printf("[config] %s", cfg)
	return cfg
}

func list(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

// String prints the effective settings with secrets masked.
func (c Config) String() string {
	return fmt.Sprintf("PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s BASE_URL=%s STORE=%s AUTH=%s BLOB=%s "+
		"GCP_PROJECT=%s GCS_BUCKET=%s S3_BUCKET=%s RAZORPAY_KEY_ID=%s RAZORPAY_KEY_SECRET=%s "+
		"JWT_SECRET=%s FIREBASE_API_KEY=%s SENDGRID_API_KEY=%s MAIL_FROM=%s CURRENCY=%s",
		c.Port, c.DBDSN, c.MediaDir, c.LogFile, c.BaseURL, c.Store, c.Auth, c.Blob,
		c.GCPProject, c.GCSBucket, c.S3Bucket, c.RazorpayKeyID, redact(c.RazorpayKeySecret),
		redact(c.JWTSecret), redact(c.FirebaseAPIKey), redact(c.SendGridKey), c.MailFrom, c.Currency)
}

// Validate reports the first setting the chosen backends are missing.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
	case StoreFirestore:
		if c.GCPProject == "" {
			return errors.New("config: STORE=firestore needs GCP_PROJECT")
		}
	default:
		return fmt.Errorf("config: unknown STORE %q", c.Store)
	}
	switch c.Auth {
	case AuthLocal:
		if c.JWTSecret == "" {
			return errors.New("config: AUTH_PROVIDER=local needs JWT_SECRET")
		}
	case AuthFirebase:
		if c.GCPProject == "" || c.FirebaseAPIKey == "" {
			return errors.New("config: AUTH_PROVIDER=firebase needs GCP_PROJECT and FIREBASE_API_KEY")
		}
	default:
		return fmt.Errorf("config: unknown AUTH_PROVIDER %q", c.Auth)
	}
	switch c.Blob {
	case BlobLocal:
	case BlobGCS:
		if c.GCSBucket == "" {
			return errors.New("config: BLOB_STORE=gcs needs GCS_BUCKET")
		}
	case BlobS3:
		if c.S3Bucket == "" {
			return errors.New("config: BLOB_STORE=s3 needs S3_BUCKET")
		}
	default:
		return fmt.Errorf("config: unknown BLOB_STORE %q", c.Blob)
	}
	return nil
}

// PaymentsEnabled reports whether checkout can open gateway orders.
func (c Config) PaymentsEnabled() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

// SecretReader returns the payload of a secret version resource name.
type SecretReader func(ctx context.Context, name string) (string, error)

// ResolveSecrets fills RazorpayKeySecret from RazorpaySecretName when the
// secret itself was not given.
func (c *Config) ResolveSecrets(ctx context.Context, read SecretReader) error {
	if c.RazorpayKeySecret != "" || c.RazorpaySecretName == "" {
		return nil
	}
	name := c.RazorpaySecretName
	if !strings.HasPrefix(name, "projects/") {
		if c.GCPProject == "" {
			return fmt.Errorf("config: secret %q needs GCP_PROJECT", name)
		}
		name = "projects/" + c.GCPProject + "/secrets/" + name + "/versions/latest"
	}
	v, err := read(ctx, name)
	if err != nil {
		return fmt.Errorf("config: read secret: %w", err)
	}
	c.RazorpayKeySecret = v
	return nil
}

// SecretManager opens a Secret Manager reader. Call the returned close func when done.
func SecretManager(ctx context.Context) (SecretReader, func() error, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	read := func(ctx context.Context, name string) (string, error) {
		resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
		if err != nil {
			return "", err
		}
		if resp.GetPayload() == nil {
			return "", fmt.Errorf("empty payload (%s)", name)
		}
		return strings.TrimSpace(string(resp.GetPayload().GetData())), nil
	}
	return read, client.Close, nil
}
