package favorites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"moma/models"
)

const mongoCollection = "favorites"

type favoriteDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	MovieID   int64     `bson:"movieId"`
	CreatedAt time.Time `bson:"createdAt"`
}

// MongoStore keeps favorites in a MongoDB "favorites" collection, one
// document per favorite with the document id as _id.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// ConnectMongo dials uri and verifies the connection before returning.
func ConnectMongo(uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	store := NewMongoStore(client.Database(database).Collection(mongoCollection))
	store.client = client
	return store, nil
}

// NewMongoStore wraps an existing collection. Close leaves its client alone.
func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

func (s *MongoStore) Exists(ctx context.Context, docID string) (bool, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := s.collection.FindOne(ctx, bson.M{"_id": docID}, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup favorite %s: %w", docID, err)
	}
	return true, nil
}

func (s *MongoStore) Put(ctx context.Context, fav models.Favorite) error {
	doc := favoriteDocument{
		ID:        fav.DocumentID(),
		UserID:    fav.UserID,
		MovieID:   fav.MovieID,
		CreatedAt: fav.CreatedAt,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("store favorite %s: %w", doc.ID, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, docID string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": docID}); err != nil {
		return fmt.Errorf("delete favorite %s: %w", docID, err)
	}
	return nil
}

func (s *MongoStore) MovieIDs(ctx context.Context, userID string) ([]int64, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "movieId", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list favorites for %s: %w", userID, err)
	}
	var docs []favoriteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode favorites for %s: %w", userID, err)
	}
	ids := make([]int64, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.MovieID)
	}
	return ids, nil
}

func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
