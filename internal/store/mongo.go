package store

import (
	"context"
	"errors"
	"fmt"

	"article-catalog/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "articles"

// MongoStore keeps articles in a collection keyed by _id = code.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and uses the articles collection of dbName.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(dbName).Collection(collectionName),
	}, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *MongoStore) Exists(ctx context.Context, code string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *MongoStore) Save(ctx context.Context, article *model.Article) error {
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": article.Code}, article, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert article: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, code string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": code})
	return err
}

func (s *MongoStore) Get(ctx context.Context, code string) (*model.Article, error) {
	var article model.Article
	err := s.coll.FindOne(ctx, bson.M{"_id": code}).Decode(&article)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (s *MongoStore) List(ctx context.Context) ([]model.Article, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	articles := []model.Article{}
	if err := cur.All(ctx, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}
