package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"deskshop/internal/db"
	"deskshop/internal/models"
)

// Status tags the outcome of one seed attempt.
type Status string

const (
	StatusSeeded  Status = "seeded"
	StatusPresent Status = "present"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result is what Ensure did and, on failure, why.
type Result struct {
	Status   Status
	Inserted int
	Reason   string
}

// Seeder inserts the sample catalog into an empty product collection.
type Seeder struct {
	store   db.Store
	locker  Locker
	catalog func() []models.Product
	now     func() time.Time
	log     *zap.Logger
}

// Option customizes a Seeder.
type Option func(*Seeder)

// WithLocker replaces the default in-process lock.
func WithLocker(l Locker) Option {
	return func(s *Seeder) { s.locker = l }
}

// WithCatalog replaces the sample catalog.
func WithCatalog(fn func() []models.Product) Option {
	return func(s *Seeder) { s.catalog = fn }
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *Seeder) { s.now = fn }
}

// New builds a Seeder for store.
func New(store db.Store, log *zap.Logger, opts ...Option) *Seeder {
	s := &Seeder{
		store:   store,
		locker:  &LocalLocker{},
		catalog: SampleProducts,
		now:     time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure seeds the catalog if the product collection is empty. It never
// returns an error; failures are logged and reported in the Result so that
// listings keep working.
func (s *Seeder) Ensure(ctx context.Context) Result {
	res := s.ensure(ctx)
	switch res.Status {
	case StatusFailed:
		s.log.Warn("seed failed", zap.String("reason", res.Reason))
	case StatusSeeded:
		s.log.Info("seeded sample products", zap.Int("inserted", res.Inserted))
	}
	return res
}

func (s *Seeder) ensure(ctx context.Context) Result {
	if !s.store.Enabled() {
		return Result{Status: StatusSkipped, Reason: "database not configured"}
	}

	unlock, err := s.locker.Lock(ctx)
	if errors.Is(err, ErrLockHeld) {
		return Result{Status: StatusSkipped, Reason: err.Error()}
	}
	if err != nil {
		return Result{Status: StatusFailed, Reason: fmt.Sprintf("acquire seed lock: %v", err)}
	}
	defer unlock()

	count, err := s.store.CountProducts(ctx)
	if err != nil {
		return Result{Status: StatusFailed, Reason: fmt.Sprintf("count products: %v", err)}
	}
	if count > 0 {
		return Result{Status: StatusPresent}
	}

	products := s.catalog()
	now := s.now()
	for i := range products {
		if err := models.Validate(&products[i]); err != nil {
			return Result{Status: StatusFailed, Reason: fmt.Sprintf("invalid sample product %q: %v", products[i].Title, err)}
		}
		products[i].Stamp(now)
	}
	if err := s.store.InsertProducts(ctx, products); err != nil {
		return Result{Status: StatusFailed, Reason: fmt.Sprintf("insert products: %v", err)}
	}
	return Result{Status: StatusSeeded, Inserted: len(products)}
}
