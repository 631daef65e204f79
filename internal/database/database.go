// Package database implements the entity store on an embedded SQLite file.
// Records are stored as JSON documents in a single table and filtered with
// json_extract, which keeps the storage shape identical to the MongoDB
// backend.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"estategraph/server/internal/models"
	"estategraph/server/internal/store"
)

const (
	kindProperty     = "property"
	kindTransaction  = "transaction"
	kindAgent        = "agent"
	kindNeighborhood = "neighborhood"
)

var fieldPath = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Document is one stored record.
type Document struct {
	Seq       int64  `gorm:"primaryKey;autoIncrement"`
	ID        string `gorm:"uniqueIndex;size:64"`
	Kind      string `gorm:"index;size:32"`
	Body      string
	CreatedAt time.Time
}

func (Document) TableName() string { return "documents" }

type Database struct {
	db     *gorm.DB
	logger *logrus.Logger

	properties    *collection[models.Property, *models.Property]
	transactions  *collection[models.Transaction, *models.Transaction]
	agents        *collection[models.Agent, *models.Agent]
	neighborhoods *collection[models.Neighborhood, *models.Neighborhood]
}

// NewDatabase opens (creating if needed) the SQLite file at dbPath. In-memory
// DSNs such as "file:test?mode=memory&cache=shared" are passed through.
func NewDatabase(dbPath string, logger *logrus.Logger) (*Database, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	if !strings.HasPrefix(dbPath, "file:") && dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, store.Unavailable("open sqlite", err)
	}

	d := &Database{db: db, logger: logger}
	d.properties = newCollection[models.Property](d, kindProperty)
	d.transactions = newCollection[models.Transaction](d, kindTransaction)
	d.agents = newCollection[models.Agent](d, kindAgent)
	d.neighborhoods = newCollection[models.Neighborhood](d, kindNeighborhood)
	return d, nil
}

// GetDB exposes the underlying gorm handle.
func (d *Database) GetDB() *gorm.DB {
	return d.db
}

func (d *Database) Properties() store.Collection[models.Property]       { return d.properties }
func (d *Database) Transactions() store.Collection[models.Transaction] { return d.transactions }
func (d *Database) Agents() store.Collection[models.Agent]             { return d.agents }
func (d *Database) Neighborhoods() store.Collection[models.Neighborhood] {
	return d.neighborhoods
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return store.Unavailable("ping", err)
	}
	return store.Unavailable("ping", sqlDB.PingContext(ctx))
}

func (d *Database) Close(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type collection[T any, P interface {
	*T
	models.Document
}] struct {
	d    *Database
	kind string
}

func newCollection[T any, P interface {
	*T
	models.Document
}](d *Database, kind string) *collection[T, P] {
	return &collection[T, P]{d: d, kind: kind}
}

func (c *collection[T, P]) Create(ctx context.Context, doc *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	P(doc).SetID(uuid.NewString())
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.kind, err)
	}

	row := Document{ID: P(doc).GetID(), Kind: c.kind, Body: string(body)}
	if err := c.d.db.WithContext(ctx).Create(&row).Error; err != nil {
		return store.Unavailable("insert "+c.kind, err)
	}

	c.d.logger.WithFields(logrus.Fields{"kind": c.kind, "id": row.ID}).Debug("Inserted document")
	return nil
}

func (c *collection[T, P]) FindByID(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var row Document
	err := c.d.db.WithContext(ctx).Where("kind = ? AND id = ?", c.kind, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s %q: %w", c.kind, id, store.ErrNotFound)
	}
	if err != nil {
		return nil, store.Unavailable("find "+c.kind, err)
	}
	return c.decode(row)
}

func (c *collection[T, P]) Find(ctx context.Context, filter store.Filter) ([]T, error) {
	rows, err := c.query(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		doc, err := c.decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, nil
}

// FindOne orders matches in SQL. Timestamps compare as instants through
// julianday, other values as stored; ties keep insertion order.
func (c *collection[T, P]) FindOne(ctx context.Context, filter store.Filter, s *store.Sort) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, err := c.filtered(c.d.db.WithContext(ctx), filter)
	if err != nil {
		return nil, err
	}
	if s != nil && s.Field != "" {
		clause, err := sortClause(s)
		if err != nil {
			return nil, err
		}
		q = q.Order(clause)
	}

	var rows []Document
	if err := q.Order("seq ASC").Limit(1).Find(&rows).Error; err != nil {
		return nil, store.Unavailable("query "+c.kind, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s matching %v: %w", c.kind, filter, store.ErrNotFound)
	}
	return c.decode(rows[0])
}

func (c *collection[T, P]) query(ctx context.Context, filter store.Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, err := c.filtered(c.d.db.WithContext(ctx), filter)
	if err != nil {
		return nil, err
	}

	var rows []Document
	if err := q.Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, store.Unavailable("query "+c.kind, err)
	}
	return rows, nil
}

// filtered narrows tx to this collection and the filter. Field paths are
// written into the SQL so the expression indexes apply; fieldPath keeps them
// to plain identifiers.
func (c *collection[T, P]) filtered(tx *gorm.DB, filter store.Filter) (*gorm.DB, error) {
	q := tx.Model(&Document{}).Where("kind = ?", c.kind)
	for key, value := range filter {
		if !fieldPath.MatchString(key) {
			return nil, fmt.Errorf("invalid filter field %q", key)
		}
		v := sqlValue(value)
		if v == nil {
			q = q.Where(extract(key) + " IS NULL")
			continue
		}
		q = q.Where(extract(key)+" = ?", v)
	}
	return q, nil
}

func sortClause(s *store.Sort) (string, error) {
	if !fieldPath.MatchString(s.Field) {
		return "", fmt.Errorf("invalid sort field %q", s.Field)
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	key := extract(s.Field)
	return fmt.Sprintf("COALESCE(julianday(%s), %s) %s", key, key, dir), nil
}

// extract matches the expression of the indexes in RunMigrations.
func extract(field string) string {
	return "json_extract(body, '$." + field + "')"
}

func (c *collection[T, P]) decode(row Document) (*T, error) {
	doc := new(T)
	if err := json.Unmarshal([]byte(row.Body), doc); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", c.kind, row.ID, err)
	}
	return doc, nil
}

// sqlValue converts filter values into what json_extract yields for them.
func sqlValue(v any) any {
	switch t := v.(type) {
	case *string:
		if t == nil {
			return nil
		}
		return *t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return v
	}
}
