package models

import (
	"github.com/paulmach/orb"
)

// PointFormat is the only geo-point discriminator the store writes.
const PointFormat = "Point"

// Document is implemented by every stored record. Identifiers are assigned
// by the store on create and never change afterwards.
type Document interface {
	GetID() string
	SetID(id string)
}

// GeoPoint is a GeoJSON-style point embedded in an address.
// Coordinates are ordered [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a stored point from an orb point.
func NewGeoPoint(p orb.Point) *GeoPoint {
	return &GeoPoint{
		Type:        PointFormat,
		Coordinates: []float64{p.Lon(), p.Lat()},
	}
}

// Point returns the orb representation. ok is false when the point does not
// carry exactly two coordinates.
func (g *GeoPoint) Point() (orb.Point, bool) {
	if g == nil || len(g.Coordinates) != 2 {
		return orb.Point{}, false
	}
	return orb.Point{g.Coordinates[0], g.Coordinates[1]}, true
}

type Address struct {
	Street string    `bson:"street" json:"street" validate:"required"`
	City   *string   `bson:"city,omitempty" json:"city,omitempty"`
	State  *string   `bson:"state,omitempty" json:"state,omitempty"`
	Zip    *string   `bson:"zip,omitempty" json:"zip,omitempty"`
	Loc    *GeoPoint `bson:"loc,omitempty" json:"loc,omitempty"`
}

// Property is a listed real-estate object. OwnerAgentID and NeighborhoodID
// are weak references and may point at records that do not exist.
type Property struct {
	ID             string  `bson:"_id" json:"_id"`
	Address        Address `bson:"address" json:"address"`
	Type           string  `bson:"type" json:"type"`
	Bedrooms       int     `bson:"bedrooms" json:"bedrooms" validate:"gte=0"`
	Bathrooms      float64 `bson:"bathrooms" json:"bathrooms" validate:"gte=0"`
	YearBuilt      int     `bson:"yearBuilt" json:"yearBuilt"`
	Sqft           int     `bson:"sqft" json:"sqft" validate:"gte=0"`
	LotSize        *int    `bson:"lotSize,omitempty" json:"lotSize,omitempty" validate:"omitempty,gte=0"`
	OwnerAgentID   *string `bson:"ownerAgentId,omitempty" json:"ownerAgentId,omitempty"`
	NeighborhoodID *string `bson:"neighborhoodId,omitempty" json:"neighborhoodId,omitempty"`
}

func (p *Property) GetID() string   { return p.ID }
func (p *Property) SetID(id string) { p.ID = id }
