package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"deskshop/internal/models"
)

// productRow is the products table of the SQL backend.
type productRow struct {
	ID          string  `gorm:"primaryKey;size:36"`
	Title       string  `gorm:"not null"`
	Description string  `gorm:"type:text"`
	Price       float64 `gorm:"not null"`
	Category    string  `gorm:"index;not null"`
	InStock     bool    `gorm:"not null"`
	Image       string
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (productRow) TableName() string { return models.ProductCollection }

func (r productRow) document() models.Document {
	doc := models.Document{
		"_id":        r.ID,
		"title":      r.Title,
		"price":      r.Price,
		"category":   r.Category,
		"in_stock":   r.InStock,
		"created_at": r.CreatedAt,
		"updated_at": r.UpdatedAt,
	}
	if r.Description != "" {
		doc["description"] = r.Description
	}
	if r.Image != "" {
		doc["image"] = r.Image
	}
	return doc
}

// orderRow is the orders table; line items are kept as a JSON column.
type orderRow struct {
	ID        string             `gorm:"primaryKey;size:36"`
	Items     []models.OrderItem `gorm:"serializer:json;not null"`
	Customer  models.Customer    `gorm:"embedded;embeddedPrefix:customer_"`
	Note      string             `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (orderRow) TableName() string { return models.OrderCollection }

// SQLStore keeps the two collections as tables through gorm, on PostgreSQL
// in production or SQLite for local runs and tests.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQL opens a postgres:// or sqlite: URL and creates the tables.
func OpenSQL(ctx context.Context, cfg Config) (*SQLStore, error) {
	var dialector gorm.Dialector
	isSQLite := false
	switch scheme(cfg.URL) {
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.URL)
	default:
		dialector = sqlite.Open(sqlitePath(cfg.URL))
		isSQLite = true
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sql database: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if isSQLite {
		// every new connection to :memory: would be a fresh database
		sqlDB.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sql database: %w", err)
	}
	return NewSQLStore(gdb)
}

// NewSQLStore wraps an open gorm handle and creates missing tables.
func NewSQLStore(gdb *gorm.DB) (*SQLStore, error) {
	if err := gdb.AutoMigrate(&productRow{}, &orderRow{}); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &SQLStore{db: gdb}, nil
}

// sqlitePath strips the "sqlite:" or "sqlite://" prefix; "file:" URIs are
// passed to the driver untouched.
func sqlitePath(url string) string {
	if strings.HasPrefix(strings.ToLower(url), "file:") {
		return url
	}
	path := url[len("sqlite:"):]
	return strings.TrimPrefix(path, "//")
}

func (s *SQLStore) Enabled() bool { return true }

func (s *SQLStore) Name() string {
	return s.db.Migrator().CurrentDatabase()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&productRow{}).Count(&n).Error
	return n, err
}

func (s *SQLStore) InsertProducts(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, productRow{
			ID:          uuid.NewString(),
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			Category:    p.Category,
			InStock:     p.InStock,
			Image:       p.Image,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	return s.db.WithContext(ctx).Create(&rows).Error
}

func (s *SQLStore) FindProducts(ctx context.Context, f ProductFilter) ([]models.Document, error) {
	q := s.db.WithContext(ctx).Model(&productRow{})
	if c := f.CategoryFilter(); c != "" {
		q = q.Where("LOWER(category) = ?", c)
	}
	if f.Query != "" {
		like := "%" + escapeLike(strings.ToLower(f.Query)) + "%"
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, like, like)
	}

	var rows []productRow
	if err := q.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]models.Document, 0, len(rows))
	for _, r := range rows {
		items = append(items, models.ToTransport(r.document()))
	}
	return items, nil
}

func (s *SQLStore) DistinctCategories(ctx context.Context) ([]string, error) {
	var cats []string
	err := s.db.WithContext(ctx).Model(&productRow{}).Distinct("category").Pluck("category", &cats).Error
	return cats, err
}

func (s *SQLStore) InsertOrder(ctx context.Context, order models.Order) (string, error) {
	order.Stamp(time.Now())
	row := orderRow{
		ID:        uuid.NewString(),
		Items:     order.Items,
		Customer:  order.Customer,
		Note:      order.Note,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return row.ID, nil
}

func (s *SQLStore) Collections(ctx context.Context) ([]string, error) {
	return s.db.WithContext(ctx).Migrator().GetTables()
}

// FindOrder reads an order back. The HTTP API never does; it is here for
// operators and tests.
func (s *SQLStore) FindOrder(ctx context.Context, id string) (models.Order, error) {
	var row orderRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return models.Order{}, err
	}
	return models.Order{
		Items:    row.Items,
		Customer: row.Customer,
		Note:     row.Note,
		Base:     models.Base{CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
	}, nil
}

// CountOrders reports how many orders are stored.
func (s *SQLStore) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&orderRow{}).Count(&n).Error
	return n, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
