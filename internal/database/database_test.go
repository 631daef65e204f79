package database

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"estategraph/server/internal/models"
	"estategraph/server/internal/store"
	"estategraph/server/internal/store/storetest"
)

var dbCounter atomic.Int64

func newTestDB(t *testing.T) *Database {
	dsn := fmt.Sprintf("file:estategraph_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := NewDatabase(dsn, logrus.New())
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close(context.Background()) })
	return db
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestDB(t) })
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, db.RunMigrations())
	assert.True(t, db.GetDB().Migrator().HasTable(&Document{}))
}

func TestFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "realestate.db")
	db, err := NewDatabase(path, nil)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	defer db.Close(context.Background())

	ctx := context.Background()
	require.NoError(t, db.Ping(ctx))

	a := &models.Agent{Name: "Jane Roe"}
	require.NoError(t, db.Agents().Create(ctx, a))
	got, err := db.Agents().FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", got.Name)
}

func TestSortHandlesMixedOffsets(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	plus2 := time.FixedZone("+02", 2*60*60)
	// 10:00+02:00 is 08:00Z, earlier than 09:00Z
	require.NoError(t, db.Transactions().Create(ctx, &models.Transaction{
		PropertyID: "p1", SaleDate: time.Date(2024, 1, 1, 10, 0, 0, 0, plus2), SalePrice: 1, Type: "purchase",
	}))
	require.NoError(t, db.Transactions().Create(ctx, &models.Transaction{
		PropertyID: "p1", SaleDate: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), SalePrice: 2, Type: "purchase",
	}))

	latest, err := db.Transactions().FindOne(ctx, store.Filter{"propertyId": "p1"}, &store.Sort{Field: "saleDate", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, 2.0, latest.SalePrice)
}

func TestFindOneTiesKeepInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	when := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for _, price := range []float64{1, 2, 3} {
		require.NoError(t, db.Transactions().Create(ctx, &models.Transaction{
			PropertyID: "p1", SaleDate: when, SalePrice: price, Type: "purchase",
		}))
	}

	latest, err := db.Transactions().FindOne(ctx, store.Filter{"propertyId": "p1"}, &store.Sort{Field: "saleDate", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, 1.0, latest.SalePrice)

	first, err := db.Transactions().FindOne(ctx, store.Filter{"propertyId": "p1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, first.SalePrice)
}

func TestFiltersUseExpressionIndexes(t *testing.T) {
	db := newTestDB(t)

	tests := []struct {
		name   string
		sql    string
		wantIx string
	}{
		{
			name: "transactions by property",
			sql: db.GetDB().ToSQL(func(tx *gorm.DB) *gorm.DB {
				q, err := db.transactions.filtered(tx, store.Filter{"propertyId": "p1"})
				require.NoError(t, err)
				order, err := sortClause(&store.Sort{Field: "saleDate", Desc: true})
				require.NoError(t, err)
				return q.Order(order).Limit(1).Find(&[]Document{})
			}),
			wantIx: "idx_documents_property_id",
		},
		{
			name: "neighborhood by name",
			sql: db.GetDB().ToSQL(func(tx *gorm.DB) *gorm.DB {
				q, err := db.neighborhoods.filtered(tx, store.Filter{"name": "Riverside"})
				require.NoError(t, err)
				return q.Find(&[]Document{})
			}),
			wantIx: "idx_documents_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var plan []struct{ Detail string }
			require.NoError(t, db.GetDB().Raw("EXPLAIN QUERY PLAN "+tt.sql).Scan(&plan).Error)
			require.NotEmpty(t, plan)

			var details []string
			for _, step := range plan {
				details = append(details, step.Detail)
			}
			assert.Contains(t, strings.Join(details, "\n"), tt.wantIx)
		})
	}
}

func TestRejectsUnsafeFilterField(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Agents().Find(context.Background(), store.Filter{"name') OR 1=1 --": "x"})
	assert.Error(t, err)

	_, err = db.Transactions().FindOne(context.Background(), nil, &store.Sort{Field: "saleDate') --"})
	assert.Error(t, err)
}
