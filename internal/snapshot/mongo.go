package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shelfwatch/shelfwatch/internal/types"
)

// MongoWriter inserts snapshots into a MongoDB collection, one document per
// store per run, tagged with the run date so history accumulates.
type MongoWriter struct {
	client     *mongo.Client
	collection *mongo.Collection
	count      int
	logger     *slog.Logger
}

// NewMongoWriter creates a MongoDB-backed snapshot writer.
func NewMongoWriter(uri, database, collection string, logger *slog.Logger) (*MongoWriter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoWriter{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_writer"),
	}, nil
}

func (w *MongoWriter) Name() string { return "mongodb" }

func (w *MongoWriter) Write(ctx context.Context, runDate string, snap *types.Snapshot) error {
	doc := struct {
		RunDate   string               `bson:"run_date"`
		StoreID   string               `bson:"store_id"`
		StoreSlug string               `bson:"store_slug"`
		Results   []types.FetchOutcome `bson:"results"`
		WrittenAt time.Time            `bson:"written_at"`
	}{
		RunDate:   runDate,
		StoreID:   snap.StoreID,
		StoreSlug: snap.StoreSlug,
		Results:   snap.Results,
		WrittenAt: time.Now(),
	}

	insertCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := w.collection.InsertOne(insertCtx, doc); err != nil {
		return fmt.Errorf("mongodb insert: %w", err)
	}

	w.count++
	w.logger.Debug("snapshot stored in mongodb", "store_slug", snap.StoreSlug, "total", w.count)
	return nil
}

func (w *MongoWriter) Close() error {
	w.logger.Info("mongodb writer closing", "snapshots", w.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return w.client.Disconnect(ctx)
}
