// Package storetest holds the behavioral contract every store backend must
// satisfy. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estategraph/server/internal/models"
	"estategraph/server/internal/store"
)

// Run exercises create/findById/find/findOne against a fresh store from
// newStore for every subtest.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("CreateAssignsID", func(t *testing.T) { testCreateAssignsID(t, newStore(t)) })
	t.Run("FindByIDNotFound", func(t *testing.T) { testFindByIDNotFound(t, newStore(t)) })
	t.Run("RoundTripsProperty", func(t *testing.T) { testRoundTripsProperty(t, newStore(t)) })
	t.Run("FindFilters", func(t *testing.T) { testFindFilters(t, newStore(t)) })
	t.Run("FindOneSorted", func(t *testing.T) { testFindOneSorted(t, newStore(t)) })
	t.Run("NeighborhoodPolygon", func(t *testing.T) { testNeighborhoodPolygon(t, newStore(t)) })
	t.Run("CancelledContext", func(t *testing.T) { testCancelledContext(t, newStore(t)) })
}

func ptr[T any](v T) *T { return &v }

func testCreateAssignsID(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := &models.Agent{Name: "Jane Roe"}
	require.NoError(t, s.Agents().Create(ctx, a))
	assert.NotEmpty(t, a.ID)

	b := &models.Agent{Name: "John Doe"}
	require.NoError(t, s.Agents().Create(ctx, b))
	assert.NotEqual(t, a.ID, b.ID)

	got, err := s.Agents().FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", got.Name)
	assert.Nil(t, got.Phone)
}

func testFindByIDNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.Properties().FindByID(ctx, "does-not-exist")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Transactions().FindOne(ctx, store.Filter{"propertyId": "nope"}, &store.Sort{Field: "saleDate", Desc: true})
	assert.ErrorIs(t, err, store.ErrNotFound)

	agent, err := store.Lookup(ctx, s.Agents(), ptr("missing"))
	assert.NoError(t, err)
	assert.Nil(t, agent)
}

func testRoundTripsProperty(t *testing.T, s store.Store) {
	ctx := context.Background()

	p := &models.Property{
		Address: models.Address{
			Street: "12 Main St",
			City:   ptr("Springfield"),
			State:  ptr("IL"),
			Zip:    ptr("62704"),
			Loc:    &models.GeoPoint{Type: models.PointFormat, Coordinates: []float64{-89.65, 39.78}},
		},
		Type:           "house",
		Bedrooms:       3,
		Bathrooms:      2.5,
		YearBuilt:      1998,
		Sqft:           1800,
		LotSize:        ptr(5000),
		NeighborhoodID: ptr("zone-1"),
	}
	require.NoError(t, s.Properties().Create(ctx, p))

	got, err := s.Properties().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, *p, *got)

	bare := &models.Property{Address: models.Address{Street: "1 Elm"}, Type: "lot"}
	require.NoError(t, s.Properties().Create(ctx, bare))
	got, err = s.Properties().FindByID(ctx, bare.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Address.Loc)
	assert.Nil(t, got.LotSize)
	assert.Nil(t, got.OwnerAgentID)
}

func testFindFilters(t *testing.T, s store.Store) {
	ctx := context.Background()

	for _, name := range []string{"Downtown", "Uptown", "Downtown"} {
		require.NoError(t, s.Neighborhoods().Create(ctx, &models.Neighborhood{Name: name}))
	}

	all, err := s.Neighborhoods().Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Downtown", all[0].Name)
	assert.Equal(t, "Uptown", all[1].Name)

	downtown, err := s.Neighborhoods().Find(ctx, store.Filter{"name": "Downtown"})
	require.NoError(t, err)
	assert.Len(t, downtown, 2)

	none, err := s.Neighborhoods().Find(ctx, store.Filter{"name": "Midtown"})
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, s.Properties().Create(ctx, &models.Property{
		Address: models.Address{Street: "1 Elm", City: ptr("Springfield")},
		Type:    "house",
	}))
	require.NoError(t, s.Properties().Create(ctx, &models.Property{
		Address: models.Address{Street: "2 Elm", City: ptr("Shelbyville")},
		Type:    "house",
	}))
	byCity, err := s.Properties().Find(ctx, store.Filter{"address.city": "Springfield"})
	require.NoError(t, err)
	require.Len(t, byCity, 1)
	assert.Equal(t, "1 Elm", byCity[0].Address.Street)
}

func testFindOneSorted(t *testing.T, s store.Store) {
	ctx := context.Background()
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	prices := []float64{100000, 300000, 200000}
	for i, price := range prices {
		require.NoError(t, s.Transactions().Create(ctx, &models.Transaction{
			PropertyID: "p1",
			SaleDate:   base.AddDate(0, i*2%5, 0),
			SalePrice:  price,
			Type:       "purchase",
		}))
	}
	require.NoError(t, s.Transactions().Create(ctx, &models.Transaction{
		PropertyID: "p2",
		SaleDate:   base.AddDate(5, 0, 0),
		SalePrice:  999,
		Type:       "purchase",
	}))

	latest, err := s.Transactions().FindOne(ctx, store.Filter{"propertyId": "p1"}, &store.Sort{Field: "saleDate", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, 200000.0, latest.SalePrice)
	assert.True(t, latest.SaleDate.Equal(base.AddDate(0, 4, 0)))

	earliest, err := s.Transactions().FindOne(ctx, store.Filter{"propertyId": "p1"}, &store.Sort{Field: "saleDate"})
	require.NoError(t, err)
	assert.Equal(t, 100000.0, earliest.SalePrice)

	cheapest, err := s.Transactions().FindOne(ctx, nil, &store.Sort{Field: "salePrice"})
	require.NoError(t, err)
	assert.Equal(t, 999.0, cheapest.SalePrice)
}

func testNeighborhoodPolygon(t *testing.T, s store.Store) {
	ctx := context.Background()

	n := &models.Neighborhood{
		Name: "Downtown",
		Polygon: map[string]any{
			"type":        "Polygon",
			"coordinates": []any{[]any{[]any{0.0, 0.0}, []any{1.0, 0.0}, []any{1.0, 1.0}, []any{0.0, 0.0}}},
		},
		AvgSalePrice:     ptr(250.0),
		TransactionCount: ptr(4),
	}
	require.NoError(t, s.Neighborhoods().Create(ctx, n))

	got, err := s.Neighborhoods().FindByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.AveragePrice())
	assert.Equal(t, 4, *got.TransactionCount)

	g, ok := got.BoundaryGeometry()
	require.True(t, ok)
	assert.Equal(t, "Polygon", g.Coordinates.GeoJSONType())
}

func testCancelledContext(t *testing.T, s store.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Agents().Find(ctx, nil)
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
