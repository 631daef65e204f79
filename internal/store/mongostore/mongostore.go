// Package mongostore implements the entity store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"estategraph/server/internal/models"
	"estategraph/server/internal/store"
)

const (
	PropertiesCollection    = "properties"
	TransactionsCollection  = "transactions"
	AgentsCollection        = "agents"
	NeighborhoodsCollection = "neighborhoods"
)

type Store struct {
	client *mongo.Client
	logger *logrus.Logger

	properties    *collection[models.Property, *models.Property]
	transactions  *collection[models.Transaction, *models.Transaction]
	agents        *collection[models.Agent, *models.Agent]
	neighborhoods *collection[models.Neighborhood, *models.Neighborhood]
}

// Connect dials uri, verifies the connection with a ping and ensures the
// indexes used by the read paths exist.
func Connect(ctx context.Context, uri, database string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.New()
	}

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, store.Unavailable("connect", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, store.Unavailable("ping", err)
	}

	db := client.Database(database)
	s := &Store{
		client:        client,
		logger:        logger,
		properties:    newCollection[models.Property](db.Collection(PropertiesCollection), logger),
		transactions:  newCollection[models.Transaction](db.Collection(TransactionsCollection), logger),
		agents:        newCollection[models.Agent](db.Collection(AgentsCollection), logger),
		neighborhoods: newCollection[models.Neighborhood](db.Collection(NeighborhoodsCollection), logger),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		logger.WithError(err).Warn("Failed to create indexes")
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.transactions.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "propertyId", Value: 1}, {Key: "saleDate", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("transactions index: %w", err)
	}
	_, err = s.neighborhoods.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("neighborhoods index: %w", err)
	}
	return nil
}

func (s *Store) Properties() store.Collection[models.Property]       { return s.properties }
func (s *Store) Transactions() store.Collection[models.Transaction] { return s.transactions }
func (s *Store) Agents() store.Collection[models.Agent]             { return s.agents }
func (s *Store) Neighborhoods() store.Collection[models.Neighborhood] {
	return s.neighborhoods
}

func (s *Store) Ping(ctx context.Context) error {
	return store.Unavailable("ping", s.client.Ping(ctx, readpref.Primary()))
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type collection[T any, P interface {
	*T
	models.Document
}] struct {
	coll   *mongo.Collection
	logger *logrus.Logger
}

func newCollection[T any, P interface {
	*T
	models.Document
}](coll *mongo.Collection, logger *logrus.Logger) *collection[T, P] {
	return &collection[T, P]{coll: coll, logger: logger}
}

func (c *collection[T, P]) Create(ctx context.Context, doc *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	P(doc).SetID(primitive.NewObjectID().Hex())
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return store.Unavailable("insert into "+c.coll.Name(), err)
	}
	c.logger.WithFields(logrus.Fields{"collection": c.coll.Name(), "id": P(doc).GetID()}).Debug("Inserted document")
	return nil
}

func (c *collection[T, P]) FindByID(ctx context.Context, id string) (*T, error) {
	return c.findOne(ctx, bson.M{"_id": id}, nil)
}

func (c *collection[T, P]) Find(ctx context.Context, filter store.Filter) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cur, err := c.coll.Find(ctx, toBSON(filter), options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}}))
	if err != nil {
		return nil, store.Unavailable("find in "+c.coll.Name(), err)
	}

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, store.Unavailable("decode "+c.coll.Name(), err)
	}
	return out, nil
}

func (c *collection[T, P]) FindOne(ctx context.Context, filter store.Filter, s *store.Sort) (*T, error) {
	return c.findOne(ctx, toBSON(filter), s)
}

func (c *collection[T, P]) findOne(ctx context.Context, filter bson.M, s *store.Sort) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := options.FindOne()
	if s != nil && s.Field != "" {
		dir := 1
		if s.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: s.Field, Value: dir}})
	}

	doc := new(T)
	err := c.coll.FindOne(ctx, filter, opts).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s matching %v: %w", c.coll.Name(), filter, store.ErrNotFound)
	}
	if err != nil {
		return nil, store.Unavailable("find one in "+c.coll.Name(), err)
	}
	return doc, nil
}

func toBSON(filter store.Filter) bson.M {
	m := bson.M{}
	for k, v := range filter {
		m[k] = v
	}
	return m
}
