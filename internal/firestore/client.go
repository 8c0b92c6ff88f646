// Package firestore stores the storefront documents in Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"myshop/internal/domain"
	applog "myshop/internal/log"
)

// Collection names used by the mobile app.
const (
	categoryCol = "CATEGORY"
	productCol  = "PRODUCT"
	bannerCol   = "BANNER"
	userCol     = "USER"
	cartCol     = "CART"
	wishCol     = "WISHLIST"
	ordersRoot  = "USERS"
	linesSub    = "PRODUCTS"
	ordersSub   = "ORDERS"
)

var errNoClient = errors.New("firestore client is nil")

// NewClient connects to projectID. An empty credentialsFile uses application
// default credentials (or FIRESTORE_EMULATOR_HOST when set).
func NewClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	applog.Info(nil, "firestore.connected", map[string]any{"project": projectID})
	return client, nil
}

func notFound(err error) bool { return status.Code(err) == codes.NotFound }

// decodeAll reads every document of it into T, setting the id from the
// document name through setID.
func decodeAll[T any](it *firestore.DocumentIterator, setID func(*T, string)) ([]T, error) {
	defer it.Stop()
	out := []T{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		var v T
		if err := snap.DataTo(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.Path, err)
		}
		if setID != nil {
			setID(&v, snap.Ref.ID)
		}
		out = append(out, v)
	}
}

// Catalog implements the read-only storefront collections.
type Catalog struct{ Client *firestore.Client }

func NewCatalog(c *firestore.Client) *Catalog { return &Catalog{Client: c} }

func (r *Catalog) Categories(ctx context.Context) ([]domain.Category, error) {
	if r.Client == nil {
		return nil, errNoClient
	}
	return decodeAll(r.Client.Collection(categoryCol).Documents(ctx), func(c *domain.Category, id string) { c.ID = id })
}

func (r *Catalog) Banners(ctx context.Context) ([]domain.Banner, error) {
	if r.Client == nil {
		return nil, errNoClient
	}
	return decodeAll(r.Client.Collection(bannerCol).Documents(ctx), func(b *domain.Banner, id string) { b.ID = id })
}

func setProductID(p *domain.Product, id string) { p.ID = id }

func (r *Catalog) Products(ctx context.Context) ([]domain.Product, error) {
	if r.Client == nil {
		return nil, errNoClient
	}
	return decodeAll(r.Client.Collection(productCol).Documents(ctx), setProductID)
}

func (r *Catalog) Product(ctx context.Context, id string) (domain.Product, error) {
	if r.Client == nil {
		return domain.Product{}, errNoClient
	}
	if id == "" {
		return domain.Product{}, domain.NotFound("product", id)
	}
	snap, err := r.Client.Collection(productCol).Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return domain.Product{}, domain.NotFound("product", id)
		}
		return domain.Product{}, err
	}
	var p domain.Product
	if err := snap.DataTo(&p); err != nil {
		return domain.Product{}, err
	}
	p.ID = snap.Ref.ID
	return p, nil
}

func (r *Catalog) ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if r.Client == nil {
		return nil, errNoClient
	}
	q := r.Client.Collection(productCol).Where("category", "==", category)
	return decodeAll(q.Documents(ctx), setProductID)
}

// ProductsFrom is a prefix range scan on name, from q up to q followed by U+F8FF.
func (r *Catalog) ProductsFrom(ctx context.Context, q string) ([]domain.Product, error) {
	if r.Client == nil {
		return nil, errNoClient
	}
	query := r.Client.Collection(productCol).OrderBy("name", firestore.Asc).StartAt(q).EndAt(q + "\uf8ff")
	return decodeAll(query.Documents(ctx), setProductID)
}
