// Package catalog handles writes: direct creation of the four record kinds
// and the compound property form that may create an agent, a neighborhood
// and a purchase transaction alongside the property.
//
// The compound flow is not atomic. Records created before a failing step
// stay persisted.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"estategraph/server/internal/models"
	"estategraph/server/internal/store"
)

// ErrInvalidInput is returned by the direct add operations when a record
// fails validation.
var ErrInvalidInput = errors.New("invalid input")

// PurchaseType is the transaction type recorded by the property form.
const PurchaseType = "purchase"

// FormInput is the loosely typed property form. Numeric fields are free
// text and fall back to zero when they cannot be read.
type FormInput struct {
	Address       string   `json:"address"`
	PropertyType  string   `json:"propertyType"`
	Bedrooms      string   `json:"bedrooms"`
	Bathrooms     string   `json:"bathrooms"`
	SquareFeet    string   `json:"squareFeet"`
	YearBuilt     string   `json:"yearBuilt"`
	PurchasePrice string   `json:"purchasePrice"`
	Description   *string  `json:"description"`
	Amenities     []string `json:"amenities"`

	AgentName   *string `json:"agentName"`
	AgentPhone  *string `json:"agentPhone"`
	AgentEmail  *string `json:"agentEmail"`
	AgentAgency *string `json:"agentAgency"`

	NeighborhoodName *string `json:"neighborhoodName"`
}

type Option func(*Service)

// WithClock replaces time.Now as the source of form purchase dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service creates records in the store.
type Service struct {
	store    store.Store
	logger   *logrus.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService creates a new write service
func NewService(s store.Store, logger *logrus.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	svc := &Service{
		store:    s,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", ErrInvalidInput, verrs.Error())
		}
		return err
	}
	return nil
}

// AddProperty validates and stores p. Coordinates, when present, must be a
// [longitude, latitude] pair within range; they are stored as a Point.
func (s *Service) AddProperty(ctx context.Context, p *models.Property) (*models.Property, error) {
	if err := s.check(p); err != nil {
		return nil, err
	}
	if p.Address.Loc != nil {
		pt, ok := p.Address.Loc.Point()
		if !ok {
			return nil, fmt.Errorf("%w: coordinates must be [longitude, latitude]", ErrInvalidInput)
		}
		if pt.Lon() < -180 || pt.Lon() > 180 || pt.Lat() < -90 || pt.Lat() > 90 {
			return nil, fmt.Errorf("%w: coordinates %v out of range", ErrInvalidInput, p.Address.Loc.Coordinates)
		}
		p.Address.Loc = models.NewGeoPoint(pt)
	}

	if err := s.store.Properties().Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	s.logger.WithField("property_id", p.ID).Info("Property created")
	return p, nil
}

func (s *Service) AddAgent(ctx context.Context, a *models.Agent) (*models.Agent, error) {
	if err := s.check(a); err != nil {
		return nil, err
	}
	if err := s.store.Agents().Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	s.logger.WithField("agent_id", a.ID).Info("Agent created")
	return a, nil
}

// AddTransaction stores t without checking that the referenced property or
// agents exist.
func (s *Service) AddTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	if err := s.check(t); err != nil {
		return nil, err
	}
	if err := s.store.Transactions().Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"transaction_id": t.ID,
		"property_id":    t.PropertyID,
	}).Info("Transaction created")
	return t, nil
}

func (s *Service) AddNeighborhood(ctx context.Context, n *models.Neighborhood) (*models.Neighborhood, error) {
	if err := s.check(n); err != nil {
		return nil, err
	}
	if n.Polygon != nil {
		if g, ok := n.BoundaryGeometry(); ok {
			s.logger.WithField("geometry", g.Type).Debug("Neighborhood boundary is GeoJSON")
		} else {
			s.logger.WithField("name", n.Name).Debug("Neighborhood boundary is not GeoJSON, storing as is")
		}
	}
	if err := s.store.Neighborhoods().Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create neighborhood: %w", err)
	}
	s.logger.WithField("neighborhood_id", n.ID).Info("Neighborhood created")
	return n, nil
}

// AddPropertyFromForm creates the property described by the form. An agent
// is created whenever a name is given. A neighborhood is looked up by exact
// name and created when missing. A purchase transaction, bought by the new
// agent, is added when a purchase price is given.
func (s *Service) AddPropertyFromForm(ctx context.Context, in FormInput) (*models.Property, error) {
	var agentID, neighborhoodID *string

	if in.AgentName != nil && *in.AgentName != "" {
		agent := &models.Agent{
			Name:   *in.AgentName,
			Phone:  in.AgentPhone,
			Email:  in.AgentEmail,
			Agency: in.AgentAgency,
		}
		if err := s.store.Agents().Create(ctx, agent); err != nil {
			return nil, fmt.Errorf("failed to create form agent: %w", err)
		}
		agentID = &agent.ID
		s.logger.WithField("agent_id", agent.ID).Debug("Created agent from form")
	}

	if in.NeighborhoodName != nil && *in.NeighborhoodName != "" {
		id, err := s.neighborhoodFor(ctx, *in.NeighborhoodName, in.PurchasePrice)
		if err != nil {
			return nil, err
		}
		neighborhoodID = &id
	}

	addr := parseAddress(in.Address)
	property := &models.Property{
		Address: models.Address{
			Street: addr.Street,
			City:   &addr.City,
			State:  &addr.State,
			Zip:    &addr.Zip,
		},
		Type:           in.PropertyType,
		Bedrooms:       s.formInt("bedrooms", in.Bedrooms),
		Bathrooms:      s.formFloat("bathrooms", in.Bathrooms),
		YearBuilt:      s.formInt("yearBuilt", in.YearBuilt),
		Sqft:           s.formInt("squareFeet", in.SquareFeet),
		LotSize:        new(int),
		OwnerAgentID:   agentID,
		NeighborhoodID: neighborhoodID,
	}
	if err := s.store.Properties().Create(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to create form property: %w", err)
	}

	if in.PurchasePrice != "" {
		txn := &models.Transaction{
			PropertyID: property.ID,
			SaleDate:   s.now(),
			SalePrice:  s.formFloat("purchasePrice", in.PurchasePrice),
			BuyerID:    agentID,
			Type:       PurchaseType,
		}
		if err := s.store.Transactions().Create(ctx, txn); err != nil {
			return nil, fmt.Errorf("failed to create purchase of property %s: %w", property.ID, err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"property_id":     property.ID,
		"agent_id":        agentID,
		"neighborhood_id": neighborhoodID,
	}).Info("Property created from form")
	return property, nil
}

// neighborhoodFor returns the id of the neighborhood called name, creating
// it when none exists. Two concurrent calls may both create one.
func (s *Service) neighborhoodFor(ctx context.Context, name, price string) (string, error) {
	existing, err := s.store.Neighborhoods().FindOne(ctx, store.Filter{"name": name}, nil)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("failed to look up neighborhood %q: %w", name, err)
	}

	avg := s.formFloat("purchasePrice", price)
	count := 1
	n := &models.Neighborhood{
		Name:             name,
		AvgSalePrice:     &avg,
		TransactionCount: &count,
	}
	if err := s.store.Neighborhoods().Create(ctx, n); err != nil {
		return "", fmt.Errorf("failed to create neighborhood %q: %w", name, err)
	}
	s.logger.WithFields(logrus.Fields{
		"neighborhood_id": n.ID,
		"name":            name,
	}).Debug("Created neighborhood from form")
	return n.ID, nil
}

func (s *Service) formInt(field, raw string) int {
	n, ok := parseInt(raw)
	if !ok {
		s.logger.WithFields(logrus.Fields{"field": field, "value": raw}).Debug("Unreadable form number, using 0")
	}
	return n
}

func (s *Service) formFloat(field, raw string) float64 {
	f, ok := parseFloat(raw)
	if !ok {
		s.logger.WithFields(logrus.Fields{"field": field, "value": raw}).Debug("Unreadable form number, using 0")
	}
	return f
}
