package firestore

import (
	"context"

	"cloud.google.com/go/firestore"

	"myshop/internal/domain"
)

// Orders appends each placed order as a new document under USERS/<uid>/ORDERS.
type Orders struct{ Client *firestore.Client }

func NewOrders(c *firestore.Client) *Orders { return &Orders{Client: c} }

func (r *Orders) col(uid string) *firestore.CollectionRef {
	return r.Client.Collection(ordersRoot).Doc(uid).Collection(ordersSub)
}

// Add never overwrites: placing the same order twice stores two documents.
func (r *Orders) Add(ctx context.Context, uid string, o domain.Order) (string, error) {
	if r.Client == nil {
		return "", errNoClient
	}
	ref := r.col(uid).NewDoc()
	if _, err := ref.Create(ctx, o); err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (r *Orders) List(ctx context.Context, uid string) ([]domain.Order, error) {
	if r.Client == nil {
		return nil, errNoClient
	}
	return decodeAll[domain.Order](r.col(uid).OrderBy("time", firestore.Asc).Documents(ctx), nil)
}
