package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"deskshop/internal/models"
)

// ErrDisabled is returned by every data operation of a disabled store.
var ErrDisabled = errors.New("database not configured")

// ProductFilter narrows a product listing. Empty fields match everything.
type ProductFilter struct {
	Category string
	Query    string
}

// CategoryFilter returns the normalized category to filter on, or "" when
// the listing is not filtered by category ("all" counts as no filter).
func (f ProductFilter) CategoryFilter() string {
	c := strings.ToLower(strings.TrimSpace(f.Category))
	if c == "all" {
		return ""
	}
	return c
}

// Store is the document store the API talks to.
type Store interface {
	Enabled() bool
	Name() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	CountProducts(ctx context.Context) (int64, error)
	InsertProducts(ctx context.Context, products []models.Product) error
	// FindProducts returns matching products newest first.
	FindProducts(ctx context.Context, f ProductFilter) ([]models.Document, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	InsertOrder(ctx context.Context, order models.Order) (string, error)
	Collections(ctx context.Context) ([]string, error)
}

// Config selects and configures a backend.
type Config struct {
	URL            string
	Name           string
	ConnectTimeout time.Duration
}

// Connect opens the store named by cfg.URL. It never fails: a missing URL,
// an unknown scheme or an unreachable server yields a disabled store.
func Connect(ctx context.Context, cfg Config, log *zap.Logger) Store {
	if strings.TrimSpace(cfg.URL) == "" {
		log.Warn("DATABASE_URL is empty; running without a database")
		return Disabled{Reason: "DATABASE_URL not set"}
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	var (
		store Store
		err   error
	)
	switch scheme(cfg.URL) {
	case "mongodb", "mongodb+srv":
		store, err = OpenMongo(ctx, cfg)
	case "postgres", "postgresql", "sqlite", "file":
		store, err = OpenSQL(ctx, cfg)
	default:
		err = errors.New("unsupported database scheme")
	}
	if err != nil {
		log.Warn("database unavailable; running without a database", zap.Error(err))
		return Disabled{Reason: err.Error()}
	}
	log.Info("database connected", zap.String("backend", scheme(cfg.URL)), zap.String("name", store.Name()))
	return store
}

func scheme(url string) string {
	i := strings.IndexByte(url, ':')
	if i < 0 {
		return ""
	}
	return strings.ToLower(url[:i])
}

// Disabled stands in for a store that could not be opened.
type Disabled struct {
	Reason string
}

func (Disabled) Enabled() bool { return false }
func (Disabled) Name() string { return "" }
func (Disabled) Ping(context.Context) error { return ErrDisabled }
func (Disabled) Close(context.Context) error { return nil }
func (Disabled) CountProducts(context.Context) (int64, error) {
	return 0, ErrDisabled
}
func (Disabled) InsertProducts(context.Context, []models.Product) error {
	return ErrDisabled
}
func (Disabled) FindProducts(context.Context, ProductFilter) ([]models.Document, error) {
	return nil, ErrDisabled
}
func (Disabled) DistinctCategories(context.Context) ([]string, error) {
	return nil, ErrDisabled
}
func (Disabled) InsertOrder(context.Context, models.Order) (string, error) {
	return "", ErrDisabled
}
func (Disabled) Collections(context.Context) ([]string, error) {
	return nil, ErrDisabled
}
