package alias

import (
	"time"

	"estategraph/server/internal/models"
)

type GeoCoordinates struct {
	GeoFormat   *string   `json:"geoFormat"`
	Coordinates []float64 `json:"coordinates"`
}

type LocationDetails struct {
	StreetAddress  string         `json:"streetAddress"`
	CityName       *string        `json:"cityName"`
	StateName      *string        `json:"stateName"`
	PostalCode     *string        `json:"postalCode"`
	GeoCoordinates GeoCoordinates `json:"geoCoordinates"`
}

// Property is the wire shape of a listed property. OwnerAgentID and GeoZoneID
// carry the weak references used to resolve ownerAgent and geoZone.
type Property struct {
	ID               string          `json:"_id"`
	LocationDetails  LocationDetails `json:"locationDetails"`
	PropertyCategory string          `json:"propertyCategory"`
	BedroomCount     int             `json:"bedroomCount"`
	BathroomCount    float64         `json:"bathroomCount"`
	BuiltYear        int             `json:"builtYear"`
	AreaSqFt         int             `json:"areaSqFt"`
	LotSizeInSqFt    *int            `json:"lotSizeInSqFt"`
	OwnerAgentID     *string         `json:"ownerAgentId"`
	GeoZoneID        *string         `json:"geoZoneId"`
}

type Agent struct {
	ID           string  `json:"_id"`
	FullName     string  `json:"fullName"`
	PhoneNumber  *string `json:"phoneNumber"`
	EmailAddress *string `json:"emailAddress"`
	AgencyName   *string `json:"agencyName"`
}

type Transaction struct {
	ID              string    `json:"_id"`
	PropertyID      string    `json:"propertyId"`
	SaleDate        time.Time `json:"saleDate"`
	SalePrice       float64   `json:"salePrice"`
	BuyerID         *string   `json:"buyerId"`
	SellerID        *string   `json:"sellerId"`
	TransactionType string    `json:"transactionType"`
}

type Neighborhood struct {
	ID                string   `json:"_id"`
	ZoneName          string   `json:"zoneName"`
	BoundaryPolygon   any      `json:"boundaryPolygon"`
	AveragePrice      *float64 `json:"averagePrice"`
	TotalTransactions *int     `json:"totalTransactions"`
}

func ensureLoc(p *models.Property) *models.GeoPoint {
	if p.Address.Loc == nil {
		p.Address.Loc = &models.GeoPoint{}
	}
	return p.Address.Loc
}

// Properties maps models.Property <-> Property.
//
// The geo-point discriminator is "type" in storage and "geoFormat" on the
// wire; "type" is overloaded in GraphQL tooling.
var Properties = Table[models.Property, Property]{
	Entity: "property",
	Bindings: []Binding[models.Property, Property]{
		Field("_id", "_id",
			func(s *models.Property) *string { return &s.ID },
			func(w *Property) *string { return &w.ID }),
		Field("locationDetails.streetAddress", "address.street",
			func(s *models.Property) *string { return &s.Address.Street },
			func(w *Property) *string { return &w.LocationDetails.StreetAddress }),
		Field("locationDetails.cityName", "address.city",
			func(s *models.Property) **string { return &s.Address.City },
			func(w *Property) **string { return &w.LocationDetails.CityName }),
		Field("locationDetails.stateName", "address.state",
			func(s *models.Property) **string { return &s.Address.State },
			func(w *Property) **string { return &w.LocationDetails.StateName }),
		Field("locationDetails.postalCode", "address.zip",
			func(s *models.Property) **string { return &s.Address.Zip },
			func(w *Property) **string { return &w.LocationDetails.PostalCode }),
		Convert("locationDetails.geoCoordinates.geoFormat", "address.loc.type",
			func(s *models.Property, w *Property) {
				if s.Address.Loc != nil {
					format := s.Address.Loc.Type
					w.LocationDetails.GeoCoordinates.GeoFormat = &format
				}
			},
			func(w *Property, s *models.Property) {
				if w.LocationDetails.GeoCoordinates.GeoFormat != nil {
					ensureLoc(s).Type = *w.LocationDetails.GeoCoordinates.GeoFormat
				}
			}),
		Convert("locationDetails.geoCoordinates.coordinates", "address.loc.coordinates",
			func(s *models.Property, w *Property) {
				if s.Address.Loc != nil {
					w.LocationDetails.GeoCoordinates.Coordinates = s.Address.Loc.Coordinates
				}
			},
			func(w *Property, s *models.Property) {
				if w.LocationDetails.GeoCoordinates.Coordinates != nil {
					ensureLoc(s).Coordinates = w.LocationDetails.GeoCoordinates.Coordinates
				}
			}),
		Field("propertyCategory", "type",
			func(s *models.Property) *string { return &s.Type },
			func(w *Property) *string { return &w.PropertyCategory }),
		Field("bedroomCount", "bedrooms",
			func(s *models.Property) *int { return &s.Bedrooms },
			func(w *Property) *int { return &w.BedroomCount }),
		Field("bathroomCount", "bathrooms",
			func(s *models.Property) *float64 { return &s.Bathrooms },
			func(w *Property) *float64 { return &w.BathroomCount }),
		Field("builtYear", "yearBuilt",
			func(s *models.Property) *int { return &s.YearBuilt },
			func(w *Property) *int { return &w.BuiltYear }),
		Field("areaSqFt", "sqft",
			func(s *models.Property) *int { return &s.Sqft },
			func(w *Property) *int { return &w.AreaSqFt }),
		Field("lotSizeInSqFt", "lotSize",
			func(s *models.Property) **int { return &s.LotSize },
			func(w *Property) **int { return &w.LotSizeInSqFt }),
		Field("ownerAgentId", "ownerAgentId",
			func(s *models.Property) **string { return &s.OwnerAgentID },
			func(w *Property) **string { return &w.OwnerAgentID }),
		Field("geoZoneId", "neighborhoodId",
			func(s *models.Property) **string { return &s.NeighborhoodID },
			func(w *Property) **string { return &w.GeoZoneID }),
	},
}.check()

var Agents = Table[models.Agent, Agent]{
	Entity: "agent",
	Bindings: []Binding[models.Agent, Agent]{
		Field("_id", "_id",
			func(s *models.Agent) *string { return &s.ID },
			func(w *Agent) *string { return &w.ID }),
		Field("fullName", "name",
			func(s *models.Agent) *string { return &s.Name },
			func(w *Agent) *string { return &w.FullName }),
		Field("phoneNumber", "phone",
			func(s *models.Agent) **string { return &s.Phone },
			func(w *Agent) **string { return &w.PhoneNumber }),
		Field("emailAddress", "email",
			func(s *models.Agent) **string { return &s.Email },
			func(w *Agent) **string { return &w.EmailAddress }),
		Field("agencyName", "agency",
			func(s *models.Agent) **string { return &s.Agency },
			func(w *Agent) **string { return &w.AgencyName }),
	},
}.check()

var Transactions = Table[models.Transaction, Transaction]{
	Entity: "transaction",
	Bindings: []Binding[models.Transaction, Transaction]{
		Field("_id", "_id",
			func(s *models.Transaction) *string { return &s.ID },
			func(w *Transaction) *string { return &w.ID }),
		Field("propertyId", "propertyId",
			func(s *models.Transaction) *string { return &s.PropertyID },
			func(w *Transaction) *string { return &w.PropertyID }),
		Field("saleDate", "saleDate",
			func(s *models.Transaction) *time.Time { return &s.SaleDate },
			func(w *Transaction) *time.Time { return &w.SaleDate }),
		Field("salePrice", "salePrice",
			func(s *models.Transaction) *float64 { return &s.SalePrice },
			func(w *Transaction) *float64 { return &w.SalePrice }),
		Field("buyerId", "buyerId",
			func(s *models.Transaction) **string { return &s.BuyerID },
			func(w *Transaction) **string { return &w.BuyerID }),
		Field("sellerId", "sellerId",
			func(s *models.Transaction) **string { return &s.SellerID },
			func(w *Transaction) **string { return &w.SellerID }),
		Field("transactionType", "type",
			func(s *models.Transaction) *string { return &s.Type },
			func(w *Transaction) *string { return &w.TransactionType }),
	},
}.check()

var Neighborhoods = Table[models.Neighborhood, Neighborhood]{
	Entity: "neighborhood",
	Bindings: []Binding[models.Neighborhood, Neighborhood]{
		Field("_id", "_id",
			func(s *models.Neighborhood) *string { return &s.ID },
			func(w *Neighborhood) *string { return &w.ID }),
		Field("zoneName", "name",
			func(s *models.Neighborhood) *string { return &s.Name },
			func(w *Neighborhood) *string { return &w.ZoneName }),
		Field("boundaryPolygon", "polygon",
			func(s *models.Neighborhood) *any { return &s.Polygon },
			func(w *Neighborhood) *any { return &w.BoundaryPolygon }),
		Field("averagePrice", "avgSalePrice",
			func(s *models.Neighborhood) **float64 { return &s.AvgSalePrice },
			func(w *Neighborhood) **float64 { return &w.AveragePrice }),
		Field("totalTransactions", "transactionCount",
			func(s *models.Neighborhood) **int { return &s.TransactionCount },
			func(w *Neighborhood) **int { return &w.TotalTransactions }),
	},
}.check()
