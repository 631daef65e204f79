// Package insight derives read-only views from stored records: the estimated
// market value of a property, its tax estimate from the latest sale and the
// combined insight bundle.
package insight

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"estategraph/server/internal/models"
	"estategraph/server/internal/store"
)

// DefaultTaxRate is the flat property tax applied to the last sale price.
const DefaultTaxRate = 0.015

// UnknownAgent is reported when no agent handled the latest sale.
const UnknownAgent = "Unknown"

// EstateValue is the zone-average based market value of a property.
type EstateValue struct {
	PropertyID         string  `json:"propertyId"`
	AreaSqFt           int     `json:"areaSqFt"`
	EstimatedValue     float64 `json:"estimatedValue"`
	BasedOnZoneAverage float64 `json:"basedOnZoneAverage"`
}

// TaxInfo is derived from the most recent sale of a property.
type TaxInfo struct {
	PropertyID   string  `json:"propertyId"`
	LastSoldFor  float64 `json:"lastSoldFor"`
	TaxRate      float64 `json:"taxRate"`
	EstimatedTax float64 `json:"estimatedTax"`
	HandledBy    string  `json:"handledBy"`
}

// PropertyInsight bundles a property with its value and tax views.
// TaxEstimate is nil when the property has never been sold.
type PropertyInsight struct {
	PropertyDetails models.Property `json:"propertyDetails"`
	MarketValue     EstateValue     `json:"marketValue"`
	TaxEstimate     *TaxInfo        `json:"taxEstimate"`
}

type Option func(*Engine)

// WithTaxRate overrides DefaultTaxRate.
func WithTaxRate(rate float64) Option {
	return func(e *Engine) { e.taxRate = rate }
}

type Engine struct {
	store   store.Store
	logger  *logrus.Logger
	taxRate float64
}

func NewEngine(s store.Store, logger *logrus.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	e := &Engine{store: s, logger: logger, taxRate: DefaultTaxRate}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TaxRate returns the rate applied by TaxInfo.
func (e *Engine) TaxRate() float64 {
	return e.taxRate
}

// EstimateValue multiplies the property area by its zone average price.
// A missing property fails with store.ErrNotFound; a missing or unpriced
// zone yields a value of zero.
func (e *Engine) EstimateValue(ctx context.Context, propertyID string) (*EstateValue, error) {
	property, err := e.store.Properties().FindByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("estimate value of property %s: %w", propertyID, err)
	}
	return e.estimate(ctx, property)
}

func (e *Engine) estimate(ctx context.Context, property *models.Property) (*EstateValue, error) {
	zone, err := store.Lookup(ctx, e.store.Neighborhoods(), property.NeighborhoodID)
	if err != nil {
		return nil, fmt.Errorf("load zone of property %s: %w", property.ID, err)
	}

	avg := zone.AveragePrice()
	if zone == nil && property.NeighborhoodID != nil {
		e.logger.WithFields(logrus.Fields{
			"property_id":     property.ID,
			"neighborhood_id": *property.NeighborhoodID,
		}).Debug("Neighborhood reference does not resolve, using zero average")
	}

	return &EstateValue{
		PropertyID:         property.ID,
		AreaSqFt:           property.Sqft,
		EstimatedValue:     float64(property.Sqft) * avg,
		BasedOnZoneAverage: avg,
	}, nil
}

// TaxInfo applies the tax rate to the latest sale of the property. A property
// without sales yields (nil, nil). The property itself is not loaded, so an
// unknown id also yields (nil, nil).
func (e *Engine) TaxInfo(ctx context.Context, propertyID string) (*TaxInfo, error) {
	txn, err := e.store.Transactions().FindOne(ctx,
		store.Filter{"propertyId": propertyID},
		&store.Sort{Field: "saleDate", Desc: true},
	)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest sale of property %s: %w", propertyID, err)
	}

	agent, err := store.Lookup(ctx, e.store.Agents(), txn.ResponsibleAgentID())
	if err != nil {
		return nil, fmt.Errorf("agent of transaction %s: %w", txn.ID, err)
	}

	handledBy := UnknownAgent
	if agent != nil && agent.Name != "" {
		handledBy = agent.Name
	}

	return &TaxInfo{
		PropertyID:   propertyID,
		LastSoldFor:  txn.SalePrice,
		TaxRate:      e.taxRate,
		EstimatedTax: txn.SalePrice * e.taxRate,
		HandledBy:    handledBy,
	}, nil
}

// PropertyInsight composes the property with EstimateValue and TaxInfo. The
// value and tax lookups run concurrently; the first failure cancels the other.
func (e *Engine) PropertyInsight(ctx context.Context, propertyID string) (*PropertyInsight, error) {
	property, err := e.store.Properties().FindByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("insight for property %s: %w", propertyID, err)
	}

	var (
		value *EstateValue
		tax   *TaxInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		value, err = e.estimate(gctx, property)
		return err
	})
	g.Go(func() error {
		var err error
		tax, err = e.TaxInfo(gctx, propertyID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"property_id":     propertyID,
		"estimated_value": value.EstimatedValue,
		"has_sales":       tax != nil,
	}).Debug("Computed property insight")

	return &PropertyInsight{
		PropertyDetails: *property,
		MarketValue:     *value,
		TaxEstimate:     tax,
	}, nil
}
