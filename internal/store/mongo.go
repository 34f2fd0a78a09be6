package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sells-group/assessment-advisor/internal/model"
)

// Mongo defaults, matching the Cosmos DB (Mongo API) deployment the tips
// were first loaded into.
const (
	DefaultMongoDatabase   = "PromptEngineeringDB"
	DefaultMongoCollection = "answers"
)

// MongoStore implements AdviceStore on a MongoDB (or Cosmos DB Mongo API)
// collection.
type MongoStore struct {
	coll    *mongo.Collection
	closeFn func(context.Context) error
}

// NewMongo connects to uri and opens database.collection. Empty names use
// the defaults.
func NewMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, eris.Wrap(err, "mongo: connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, eris.Wrap(err, "mongo: ping")
	}
	return &MongoStore{
		coll:    client.Database(database).Collection(collection),
		closeFn: client.Disconnect,
	}, nil
}

// NewMongoFromCollection wraps an existing collection. Close is a no-op.
func NewMongoFromCollection(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Migrate(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "question_id", Value: 1}, {Key: "category", Value: 1}},
	})
	return eris.Wrap(err, "mongo: create advice index")
}

func (s *MongoStore) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn(context.Background())
}

// Lookup returns the first matching document in natural _id order.
func (s *MongoStore) Lookup(ctx context.Context, questionID string, category model.AdviceCategory) (string, bool, error) {
	if !validKey(questionID, category) {
		return "", false, nil
	}

	filter := bson.D{
		{Key: "question_id", Value: questionID},
		{Key: "category", Value: string(category)},
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(2)

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return "", false, eris.Wrapf(err, "mongo: lookup advice %s/%s", questionID, category)
	}

	var docs []model.AdviceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return "", false, eris.Wrap(err, "mongo: decode advice")
	}

	switch len(docs) {
	case 0:
		return "", false, nil
	case 1:
	default:
		warnDuplicate("mongo", questionID, category)
	}
	return docs[0].Text, true, nil
}

// Insert writes docs with InsertMany. Documents without an id get a new UUID.
func (s *MongoStore) Insert(ctx context.Context, docs []model.AdviceDoc) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	batch, _ := withIDs(docs)
	res, err := s.coll.InsertMany(ctx, batch)
	if err != nil {
		return 0, eris.Wrap(err, "mongo: insert advice")
	}
	return int64(len(res.InsertedIDs)), nil
}

// Replace inserts docs first and then deletes every other document, so a
// failed insert leaves the previous set untouched. Standalone and Cosmos
// deployments lack multi-document transactions.
func (s *MongoStore) Replace(ctx context.Context, docs []model.AdviceDoc) (int64, error) {
	var inserted int64
	batch, ids := withIDs(docs)
	if len(batch) > 0 {
		res, err := s.coll.InsertMany(ctx, batch)
		if err != nil {
			return 0, eris.Wrap(err, "mongo: replace: insert advice")
		}
		inserted = int64(len(res.InsertedIDs))
	}

	if _, err := s.coll.DeleteMany(ctx, bson.D{{Key: "id", Value: bson.D{{Key: "$nin", Value: ids}}}}); err != nil {
		return 0, eris.Wrap(err, "mongo: replace: remove previous advice")
	}
	return inserted, nil
}

// withIDs assigns missing ids and returns the batch with its id list.
func withIDs(docs []model.AdviceDoc) ([]any, []string) {
	batch := make([]any, len(docs))
	ids := make([]string, len(docs))
	for i, d := range docs {
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		batch[i] = d
		ids[i] = d.ID
	}
	return batch, ids
}

func (s *MongoStore) Truncate(ctx context.Context) error {
	_, err := s.coll.DeleteMany(ctx, bson.D{})
	return eris.Wrap(err, "mongo: truncate advice")
}
