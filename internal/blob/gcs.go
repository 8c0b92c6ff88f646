package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"cloud.google.com/go/storage"
)

// GCS stores objects in a Cloud Storage bucket. With SignedURLExpiry set,
// URL hands out V4 signed links; otherwise the public object URL.
type GCS struct {
	Client          *storage.Client
	Bucket          string
	SignedURLExpiry time.Duration
}

func NewGCS(client *storage.Client, bucket string) *GCS {
	return &GCS{Client: client, Bucket: bucket}
}

func (g *GCS) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	w := g.Client.Bucket(g.Bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (g *GCS) URL(ctx context.Context, key string) (string, error) {
	obj := g.Client.Bucket(g.Bucket).Object(key)
	if _, err := obj.Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", fmt.Errorf("object %s does not exist", key)
		}
		return "", err
	}
	if g.SignedURLExpiry > 0 {
		return g.Client.Bucket(g.Bucket).SignedURL(key, &storage.SignedURLOptions{
			Scheme:  storage.SigningSchemeV4,
			Method:  "GET",
			Expires: time.Now().Add(g.SignedURLExpiry),
		})
	}
	return (&url.URL{Scheme: "https", Host: "storage.googleapis.com", Path: "/" + g.Bucket + "/" + key}).String(), nil
}
