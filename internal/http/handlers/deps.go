package handlers

import (
	"time"

	"myshop/internal/checkout"
	"myshop/internal/config"
	"myshop/internal/services"
	"myshop/internal/state"
)

// Limits caps requests per client IP. Zero disables a limiter.
type Limits struct {
	Login       int
	LoginEvery  time.Duration
	Search      int
	SearchEvery time.Duration
}

type Deps struct {
	CategoryHandler *CategoryHandler
	SearchHandler   *SearchHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	WishlistHandler *WishlistHandler
	OrderHandler    *OrderHandler
	ProfileHandler  *ProfileHandler
	AuthHandler     *AuthHandler
	CheckoutHandler *CheckoutHandler
	AdminHandler    *AdminHandler

	Identify    Identifier
	AdminEmails []string
	Limits      Limits
}

// NewDeps builds every handler over one repository and one set of holders.
// bridge may be nil when payments are not configured.
func NewDeps(repo *services.Repo, reg *state.Registry, bridge *checkout.Bridge, recon ReconciliationLister, cfg config.Config) *Deps {
	return &Deps{
		CategoryHandler: &CategoryHandler{Home: reg.Home(), Catalog: repo, Holders: reg},
		SearchHandler:   &SearchHandler{Catalog: repo, Home: reg.Home()},
		ProductHandler:  &ProductHandler{Holders: reg},
		CartHandler:     &CartHandler{Holders: reg},
		WishlistHandler: &WishlistHandler{Holders: reg},
		OrderHandler:    &OrderHandler{Holders: reg},
		ProfileHandler:  &ProfileHandler{Holders: reg},
		AuthHandler:     &AuthHandler{Holders: reg, Payment: bridge, TTL: cfg.SessionTTL},
		CheckoutHandler: &CheckoutHandler{Payment: bridge},
		AdminHandler:    &AdminHandler{Recon: recon},

		Identify:    repo,
		AdminEmails: cfg.AdminEmails,
		Limits:      Limits{Login: 5, LoginEvery: 10 * time.Minute, Search: 20, SearchEvery: time.Minute},
	}
}
