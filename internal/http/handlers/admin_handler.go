package handlers

import (
	"context"

	"myshop/internal/domain"
	applog "myshop/internal/log"

	"github.com/gofiber/fiber/v2"
)

type ReconciliationLister interface {
	List(ctx context.Context) ([]domain.Reconciliation, error)
}

// AdminHandler exposes the payments that were captured without a stored order.
type AdminHandler struct {
	Recon ReconciliationLister
}

// GET /admin/reconciliations
func (h *AdminHandler) Reconciliations(c *fiber.Ctx) error {
	recs, err := h.Recon.List(c.UserContext())
	if err != nil {
		applog.Error(c, "admin.reconciliations.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not load reconciliations"})
	}
	applog.Audit(c, "admin.reconciliations.view", map[string]any{"count": len(recs)})
	return c.JSON(fiber.Map{"reconciliations": recs, "count": len(recs)})
}
