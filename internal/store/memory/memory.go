// Package memory is an in-process entity store. Records are kept as BSON
// documents so filters and sorts behave like the MongoDB backend, and every
// read hands out a fresh copy.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"estategraph/server/internal/models"
	"estategraph/server/internal/store"
)

type Store struct {
	properties    *collection[models.Property, *models.Property]
	transactions  *collection[models.Transaction, *models.Transaction]
	agents        *collection[models.Agent, *models.Agent]
	neighborhoods *collection[models.Neighborhood, *models.Neighborhood]
}

// New returns an empty store. The logger may be nil.
func New(logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		properties:    newCollection[models.Property]("properties", logger),
		transactions:  newCollection[models.Transaction]("transactions", logger),
		agents:        newCollection[models.Agent]("agents", logger),
		neighborhoods: newCollection[models.Neighborhood]("neighborhoods", logger),
	}
}

func (s *Store) Properties() store.Collection[models.Property]       { return s.properties }
func (s *Store) Transactions() store.Collection[models.Transaction] { return s.transactions }
func (s *Store) Agents() store.Collection[models.Agent]             { return s.agents }
func (s *Store) Neighborhoods() store.Collection[models.Neighborhood] {
	return s.neighborhoods
}

func (s *Store) Ping(ctx context.Context) error  { return ctx.Err() }
func (s *Store) Close(ctx context.Context) error { return nil }

type collection[T any, P interface {
	*T
	models.Document
}] struct {
	name   string
	logger *logrus.Logger

	mu   sync.RWMutex
	docs []bson.Raw
	byID map[string]int
}

func newCollection[T any, P interface {
	*T
	models.Document
}](name string, logger *logrus.Logger) *collection[T, P] {
	return &collection[T, P]{
		name:   name,
		logger: logger,
		byID:   make(map[string]int),
	}
}

func (c *collection[T, P]) Create(ctx context.Context, doc *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id := primitive.NewObjectID().Hex()
	P(doc).SetID(id)

	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", c.name, err)
	}

	c.mu.Lock()
	c.byID[id] = len(c.docs)
	c.docs = append(c.docs, raw)
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{"collection": c.name, "id": id}).Debug("Inserted document")
	return nil
}

func (c *collection[T, P]) FindByID(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	idx, ok := c.byID[id]
	var raw bson.Raw
	if ok {
		raw = c.docs[idx]
	}
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%s %q: %w", c.name, id, store.ErrNotFound)
	}
	return c.decode(raw)
}

func (c *collection[T, P]) Find(ctx context.Context, filter store.Filter) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := c.match(filter)
	out := make([]T, 0, len(matched))
	for _, raw := range matched {
		doc, err := c.decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (c *collection[T, P]) FindOne(ctx context.Context, filter store.Filter, s *store.Sort) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := c.match(filter)
	if len(matched) == 0 {
		return nil, fmt.Errorf("%s matching %v: %w", c.name, filter, store.ErrNotFound)
	}

	if s != nil && s.Field != "" {
		path := strings.Split(s.Field, ".")
		sort.SliceStable(matched, func(i, j int) bool {
			a, _ := matched[i].LookupErr(path...)
			b, _ := matched[j].LookupErr(path...)
			if s.Desc {
				return compareValues(b, a) < 0
			}
			return compareValues(a, b) < 0
		})
	}
	return c.decode(matched[0])
}

func (c *collection[T, P]) match(filter store.Filter) []bson.Raw {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []bson.Raw
	for _, raw := range c.docs {
		if matches(raw, filter) {
			out = append(out, raw)
		}
	}
	return out
}

func (c *collection[T, P]) decode(raw bson.Raw) (*T, error) {
	doc := new(T)
	if err := bson.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("decode %s document: %w", c.name, err)
	}
	return doc, nil
}

// matches applies equality semantics: a nil filter value matches a missing
// or null field.
func matches(raw bson.Raw, filter store.Filter) bool {
	for key, want := range filter {
		got, err := raw.LookupErr(strings.Split(key, ".")...)
		missing := err != nil || got.Type == bsontype.Null

		if want == nil {
			if !missing {
				return false
			}
			continue
		}
		if missing {
			return false
		}

		t, data, err := bson.MarshalValue(want)
		if err != nil {
			return false
		}
		if !equalValues(got, bson.RawValue{Type: t, Value: data}) {
			return false
		}
	}
	return true
}

func numeric(v bson.RawValue) (float64, bool) {
	switch v.Type {
	case bsontype.Double:
		return v.Double(), true
	case bsontype.Int32:
		return float64(v.Int32()), true
	case bsontype.Int64:
		return float64(v.Int64()), true
	}
	return 0, false
}

func equalValues(a, b bson.RawValue) bool {
	if x, ok := numeric(a); ok {
		if y, ok := numeric(b); ok {
			return x == y
		}
	}
	return a.Equal(b)
}

// compareValues orders missing values first, then numbers, strings and
// dates by value. Mixed kinds compare equal.
func compareValues(a, b bson.RawValue) int {
	aMissing := a.Type == 0 || a.Type == bsontype.Null
	bMissing := b.Type == 0 || b.Type == bsontype.Null
	switch {
	case aMissing && bMissing:
		return 0
	case aMissing:
		return -1
	case bMissing:
		return 1
	}

	if x, ok := numeric(a); ok {
		if y, ok := numeric(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}

	switch {
	case a.Type == bsontype.String && b.Type == bsontype.String:
		return strings.Compare(a.StringValue(), b.StringValue())
	case a.Type == bsontype.DateTime && b.Type == bsontype.DateTime:
		x, y := a.DateTime(), b.DateTime()
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}
