package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookstand/internal/storage"
	"bookstand/pkg/model"
)

type documentStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewDocumentStore initializes a MongoDB-backed document store.
func NewDocumentStore(provider *Provider) storage.DocumentStore {
	return &documentStore{
		client: provider.Client(),
		db:     provider.Database(),
	}
}

func (m *documentStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	d, err := toBSONMap(doc)
	if err != nil {
		return "", err
	}

	id, _ := d["_id"].(string)
	if id == "" {
		id = uuid.NewString()
		d["_id"] = id
	}

	if _, err := m.db.Collection(collection).InsertOne(ctx, d); err != nil {
		return "", storeErr(err)
	}
	return id, nil
}

func (m *documentStore) GetByID(ctx context.Context, collection string, id string, out any) error {
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.ErrNotFound
		}
		return storeErr(err)
	}
	return nil
}

func (m *documentStore) Find(ctx context.Context, collection string, q model.Query, out any) error {
	findOpts := options.Find()
	if q.Skip > 0 {
		findOpts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		findOpts.SetLimit(q.Limit)
	}
	if len(q.Sort) > 0 {
		sort := bson.D{}
		for _, s := range q.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: s.Field, Value: dir})
		}
		findOpts.SetSort(sort)
	}

	cursor, err := m.db.Collection(collection).Find(ctx, makeFilterBSON(q.Filters, q.Mode), findOpts)
	if err != nil {
		return storeErr(err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return storeErr(err)
	}
	return nil
}

func (m *documentStore) Count(ctx context.Context, collection string, q model.Query) (int64, error) {
	n, err := m.db.Collection(collection).CountDocuments(ctx, makeFilterBSON(q.Filters, q.Mode))
	if err != nil {
		return 0, storeErr(err)
	}
	return n, nil
}

func (m *documentStore) UpdateByID(ctx context.Context, collection string, id string, set map[string]any) error {
	update := bson.M{}
	for k, v := range set {
		update[k] = v
	}
	update["updated_at"] = time.Now().UTC()

	result, err := m.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return storeErr(err)
	}
	if result.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (m *documentStore) IncrementField(ctx context.Context, collection string, id string, field string, delta int64) error {
	update := bson.M{
		"$set": bson.M{"updated_at": time.Now().UTC()},
		"$inc": bson.M{field: delta},
	}

	result, err := m.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return storeErr(err)
	}
	if result.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (m *documentStore) DeleteByID(ctx context.Context, collection string, id string) error {
	result, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr(err)
	}
	if result.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (m *documentStore) Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline) ([]bson.M, error) {
	cursor, err := m.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeErr(err)
	}
	defer cursor.Close(ctx)

	var rows []bson.M
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storeErr(err)
	}
	return rows, nil
}

func (m *documentStore) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, nil); err != nil {
		return storeErr(err)
	}
	return nil
}

func (m *documentStore) Close(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	return nil
}

// storeErr maps driver failures onto the store-unavailable class. NotFound
// is decided at call sites from matched/deleted counts, never here.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
}

func toBSONMap(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	var d bson.M
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return d, nil
}
