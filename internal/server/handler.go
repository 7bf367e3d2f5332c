package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"deskshop/internal/db"
	"deskshop/internal/errx"
	"deskshop/internal/logger"
	"deskshop/internal/models"
	"deskshop/internal/seed"
)

const (
	rootMessage       = "DeskSetups Shop API running"
	healthUnavailable = "database unavailable"
)

// Handler serves the shop endpoints.
type Handler struct {
	store          db.Store
	seeder         *seed.Seeder
	databaseURLSet bool
}

// NewHandler wires a handler. databaseURLSet only feeds the diagnostics
// report.
func NewHandler(store db.Store, seeder *seed.Seeder, databaseURLSet bool) *Handler {
	return &Handler{store: store, seeder: seeder, databaseURLSet: databaseURLSet}
}

// Root GET /
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": rootMessage})
}

// Health GET /health
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		logger.FromContext(c).Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": healthUnavailable})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type diagnosticsResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      *string  `json:"database_url"`
	DatabaseName     *string  `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// Diagnostics GET /test. Always 200; problems are described in the body.
func (h *Handler) Diagnostics(c *gin.Context) {
	d := db.Diagnose(c.Request.Context(), h.store)

	resp := diagnosticsResponse{
		Backend:          "✅ Running",
		Database:         "⚠️  Available but not initialized",
		ConnectionStatus: "Not Connected",
		Collections:      d.Collections,
	}
	if d.State != db.StateUnavailable {
		urlState := "❌ Not Set"
		if h.databaseURLSet {
			urlState = "✅ Set"
		}
		name := d.Name
		if name == "" {
			name = "✅ Connected"
		}
		resp.DatabaseURL = &urlState
		resp.DatabaseName = &name
		resp.ConnectionStatus = "Connected"
		resp.Database = "✅ Connected & Working"
		if d.State == db.StateDegraded {
			resp.Database = "⚠️  Connected but Error: " + d.Reason
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ListProducts GET /api/products?category=&q=
func (h *Handler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	h.seeder.Ensure(ctx)

	items, err := h.store.FindProducts(ctx, db.ProductFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	})
	if err != nil {
		abort(c, err)
		return
	}
	if items == nil {
		items = []models.Document{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ListCategories GET /api/categories
func (h *Handler) ListCategories(c *gin.Context) {
	ctx := c.Request.Context()
	h.seeder.Ensure(ctx)

	cats, err := h.store.DistinctCategories(ctx)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categoryList(cats)})
}

// categoryList sorts and deduplicates cats behind the leading "all".
func categoryList(cats []string) []string {
	seen := map[string]bool{"all": true}
	out := []string{"all"}
	sorted := append([]string(nil), cats...)
	sort.Strings(sorted)
	for _, cat := range sorted {
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	return out
}

// CreateOrder POST /api/orders
func (h *Handler) CreateOrder(c *gin.Context) {
	if !h.store.Enabled() {
		abort(c, db.ErrDisabled)
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &verrs) && len(req.Items) == 0:
			abort(c, errx.BadRequest(errx.EmptyOrderMessage))
		case errors.As(err, &verrs):
			abortValidation(c, models.FieldErrors(err))
		case errors.As(err, &typeErr):
			abortValidation(c, []models.FieldError{{
				Field:   typeErr.Field,
				Message: "Must be of type " + typeErr.Type.String(),
			}})
		default:
			abort(c, errx.BadRequest("Invalid JSON body"))
		}
		return
	}

	id, err := h.store.InsertOrder(c.Request.Context(), req.ToOrder())
	if err != nil {
		abort(c, err)
		return
	}
	logger.FromContext(c).Info("order created",
		zap.String("order_id", id),
		zap.Int("items", len(req.Items)),
	)
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Schema GET /schema
func (h *Handler) Schema(c *gin.Context) {
	content, err := models.SchemaDocument()
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}
