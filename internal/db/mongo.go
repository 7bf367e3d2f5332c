package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"deskshop/internal/models"
)

const defaultDatabaseName = "deskshop"

// MongoStore keeps products and orders in MongoDB collections.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to cfg.URL and pings the primary. The database name is
// cfg.Name, else the URI path, else "deskshop".
func OpenMongo(ctx context.Context, cfg Config) (*MongoStore, error) {
	name := cfg.Name
	if name == "" {
		cs, err := connstring.ParseAndValidate(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse mongodb uri: %w", err)
		}
		name = cs.Database
	}
	if name == "" {
		name = defaultDatabaseName
	}

	opts := options.Client().
		ApplyURI(cfg.URL).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return NewMongoStore(client, client.Database(name)), nil
}

// NewMongoStore wraps an already connected database.
func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{client: client, db: db}
}

func (s *MongoStore) Enabled() bool { return true }

func (s *MongoStore) Name() string { return s.db.Name() }

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) products() *mongo.Collection {
	return s.db.Collection(models.ProductCollection)
}

func (s *MongoStore) CountProducts(ctx context.Context) (int64, error) {
	return s.products().CountDocuments(ctx, bson.D{})
}

func (s *MongoStore) InsertProducts(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	docs := make([]any, len(products))
	for i := range products {
		docs[i] = products[i]
	}
	_, err := s.products().InsertMany(ctx, docs)
	return err
}

func (s *MongoStore) FindProducts(ctx context.Context, f ProductFilter) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.products().Find(ctx, productFilter(f), opts)
	if err != nil {
		return nil, err
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, err
	}
	items := make([]models.Document, 0, len(raw))
	for _, doc := range raw {
		items = append(items, models.ToTransport(models.Document(doc)))
	}
	return items, nil
}

func (s *MongoStore) DistinctCategories(ctx context.Context) ([]string, error) {
	values, err := s.products().Distinct(ctx, "category", bson.D{})
	if err != nil {
		return nil, err
	}
	cats := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := v.(string); ok {
			cats = append(cats, c)
		}
	}
	return cats, nil
}

func (s *MongoStore) InsertOrder(ctx context.Context, order models.Order) (string, error) {
	order.Stamp(time.Now())
	res, err := s.db.Collection(models.OrderCollection).InsertOne(ctx, order)
	if err != nil {
		return "", err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted id type")
	}
	return id.Hex(), nil
}

func (s *MongoStore) Collections(ctx context.Context) ([]string, error) {
	return s.db.ListCollectionNames(ctx, bson.D{})
}

// productFilter builds the query document for a listing. Category matches
// exactly and query is a literal substring, both case-insensitive.
func productFilter(f ProductFilter) bson.M {
	filter := bson.M{}
	if c := f.CategoryFilter(); c != "" {
		filter["category"] = bson.M{"$regex": "^" + regexp.QuoteMeta(c) + "$", "$options": "i"}
	}
	if f.Query != "" {
		pattern := regexp.QuoteMeta(f.Query)
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return filter
}
