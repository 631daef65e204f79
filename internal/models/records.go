package models

import (
	"time"

	"github.com/paulmach/orb/geojson"
)

type Transaction struct {
	ID         string    `bson:"_id" json:"_id"`
	PropertyID string    `bson:"propertyId" json:"propertyId" validate:"required"`
	SaleDate   time.Time `bson:"saleDate" json:"saleDate"`
	SalePrice  float64   `bson:"salePrice" json:"salePrice" validate:"gte=0"`
	BuyerID    *string   `bson:"buyerId,omitempty" json:"buyerId,omitempty"`
	SellerID   *string   `bson:"sellerId,omitempty" json:"sellerId,omitempty"`
	Type       string    `bson:"type" json:"type"`
}

func (t *Transaction) GetID() string   { return t.ID }
func (t *Transaction) SetID(id string) { t.ID = id }

// ResponsibleAgentID prefers the seller and falls back to the buyer.
func (t *Transaction) ResponsibleAgentID() *string {
	if t.SellerID != nil && *t.SellerID != "" {
		return t.SellerID
	}
	if t.BuyerID != nil && *t.BuyerID != "" {
		return t.BuyerID
	}
	return nil
}

type Agent struct {
	ID     string  `bson:"_id" json:"_id"`
	Name   string  `bson:"name" json:"name" validate:"required"`
	Phone  *string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email  *string `bson:"email,omitempty" json:"email,omitempty"`
	Agency *string `bson:"agency,omitempty" json:"agency,omitempty"`
}

func (a *Agent) GetID() string   { return a.ID }
func (a *Agent) SetID(id string) { a.ID = id }

// Neighborhood is a zone with aggregate sale statistics. Polygon is kept as
// opaque structured data exactly as it was supplied.
type Neighborhood struct {
	ID               string   `bson:"_id" json:"_id"`
	Name             string   `bson:"name" json:"name" validate:"required"`
	Polygon          any      `bson:"polygon,omitempty" json:"polygon,omitempty"`
	AvgSalePrice     *float64 `bson:"avgSalePrice,omitempty" json:"avgSalePrice,omitempty" validate:"omitempty,gte=0"`
	TransactionCount *int     `bson:"transactionCount,omitempty" json:"transactionCount,omitempty" validate:"omitempty,gte=0"`
}

func (n *Neighborhood) GetID() string   { return n.ID }
func (n *Neighborhood) SetID(id string) { n.ID = id }

// AveragePrice returns the zone average, treating an unset value as zero.
func (n *Neighborhood) AveragePrice() float64 {
	if n == nil || n.AvgSalePrice == nil {
		return 0
	}
	return *n.AvgSalePrice
}

// BoundaryGeometry interprets the polygon as GeoJSON when it has that shape.
// ok is false for any other structure; the polygon itself stays untouched.
func (n *Neighborhood) BoundaryGeometry() (*geojson.Geometry, bool) {
	if n == nil || n.Polygon == nil {
		return nil, false
	}
	raw, err := marshalJSON(n.Polygon)
	if err != nil {
		return nil, false
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil || g.Coordinates == nil {
		return nil, false
	}
	return g, true
}
