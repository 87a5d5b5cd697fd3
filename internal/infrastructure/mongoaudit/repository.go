package mongoaudit

import (
	"context"
	"fmt"
	"time"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/config"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/audit"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Repository keeps the order audit trail in a MongoDB collection.
type Repository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type document struct {
	ID          string    `bson:"_id"`
	Action      string    `bson:"action"`
	OrderID     string    `bson:"order_id"`
	OrderNumber string    `bson:"order_number"`
	Data        bson.M    `bson:"data,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

func NewRepository(ctx context.Context, cfg config.MongoDBConfig) (*Repository, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "order_number", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create audit index: %w", err)
	}

	return &Repository{client: client, collection: coll}, nil
}

func (r *Repository) Append(ctx context.Context, entry *audit.Entry) error {
	doc := toDocument(entry)
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("audit append: %w", err)
	}
	entry.ID, entry.CreatedAt = doc.ID, doc.CreatedAt
	return nil
}

func (r *Repository) List(ctx context.Context, orderNumber string, limit int64) ([]*audit.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"order_number": orderNumber}, opts)
	if err != nil {
		return nil, fmt.Errorf("audit list: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("audit list: %w", err)
	}

	entries := make([]*audit.Entry, 0, len(docs))
	for i := range docs {
		entries = append(entries, docs[i].toEntry())
	}
	return entries, nil
}

func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func toDocument(e *audit.Entry) document {
	doc := document{
		ID:          e.ID,
		Action:      e.Action,
		OrderID:     e.OrderID,
		OrderNumber: e.OrderNumber,
		CreatedAt:   e.CreatedAt,
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if len(e.Data) > 0 {
		doc.Data = bson.M(e.Data)
	}
	return doc
}

func (d *document) toEntry() *audit.Entry {
	e := &audit.Entry{
		ID:          d.ID,
		Action:      d.Action,
		OrderID:     d.OrderID,
		OrderNumber: d.OrderNumber,
		CreatedAt:   d.CreatedAt.UTC(),
	}
	if len(d.Data) > 0 {
		e.Data = map[string]any(d.Data)
	}
	return e
}
