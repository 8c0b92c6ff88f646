package firestore

import (
	"context"

	"cloud.google.com/go/firestore"

	"myshop/internal/domain"
)

// Lines stores cart or wishlist lines under <root>/<uid>/PRODUCTS/<productId>.
type Lines struct {
	Client *firestore.Client
	root   string
}

func NewCart(c *firestore.Client) *Lines     { return &Lines{Client: c, root: cartCol} }
func NewWishlist(c *firestore.Client) *Lines { return &Lines{Client: c, root: wishCol} }

func (r *Lines) col(uid string) *firestore.CollectionRef {
	return r.Client.Collection(r.root).Doc(uid).Collection(linesSub)
}

// Put replaces whatever line the product already had.
func (r *Lines) Put(ctx context.Context, uid string, l domain.CartLine) error {
	if r.Client == nil {
		return errNoClient
	}
	_, err := r.col(uid).Doc(l.ProductID).Set(ctx, l)
	return err
}

// Delete succeeds for an absent line.
func (r *Lines) Delete(ctx context.Context, uid, productID string) error {
	if r.Client == nil {
		return errNoClient
	}
	_, err := r.col(uid).Doc(productID).Delete(ctx)
	if notFound(err) {
		return nil
	}
	return err
}

func (r *Lines) List(ctx context.Context, uid string) ([]domain.CartLine, error) {
	if r.Client == nil {
		return nil, errNoClient
	}
	return decodeAll[domain.CartLine](r.col(uid).Documents(ctx), nil)
}

func (r *Lines) Clear(ctx context.Context, uid string) error {
	if r.Client == nil {
		return errNoClient
	}
	refs, err := r.col(uid).DocumentRefs(ctx).GetAll()
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}
	bw := r.Client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		j, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, j)
	}
	bw.End()
	for _, j := range jobs {
		if _, err := j.Results(); err != nil && !notFound(err) {
			return err
		}
	}
	return nil
}
