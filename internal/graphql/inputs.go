package graphql

import (
	"time"

	gql "github.com/graph-gophers/graphql-go"

	"estategraph/server/internal/alias"
	"estategraph/server/internal/catalog"
	"estategraph/server/internal/models"
)

type locationDetailsInput struct {
	StreetAddress string
	CityName      *string
	StateName     *string
	PostalCode    *string
	Coordinates   *[]*float64
}

type propertyInput struct {
	LocationDetails  locationDetailsInput
	PropertyCategory string
	BedroomCount     int32
	BathroomCount    float64
	BuiltYear        int32
	AreaSqFt         int32
	LotSizeInSqFt    *int32
	OwnerAgentID     *gql.ID
	GeoZoneID        *gql.ID
}

// wire builds the wire record. Supplied coordinates always form a point.
func (in propertyInput) wire() alias.Property {
	w := alias.Property{
		LocationDetails: alias.LocationDetails{
			StreetAddress: in.LocationDetails.StreetAddress,
			CityName:      in.LocationDetails.CityName,
			StateName:     in.LocationDetails.StateName,
			PostalCode:    in.LocationDetails.PostalCode,
		},
		PropertyCategory: in.PropertyCategory,
		BedroomCount:     int(in.BedroomCount),
		BathroomCount:    in.BathroomCount,
		BuiltYear:        int(in.BuiltYear),
		AreaSqFt:         int(in.AreaSqFt),
		LotSizeInSqFt:    intValue(in.LotSizeInSqFt),
		OwnerAgentID:     idValue(in.OwnerAgentID),
		GeoZoneID:        idValue(in.GeoZoneID),
	}
	if in.LocationDetails.Coordinates != nil {
		format := models.PointFormat
		w.LocationDetails.GeoCoordinates = alias.GeoCoordinates{
			GeoFormat:   &format,
			Coordinates: floats(*in.LocationDetails.Coordinates),
		}
	}
	return w
}

type agentInput struct {
	FullName     string
	PhoneNumber  *string
	EmailAddress *string
	AgencyName   *string
}

func (in agentInput) wire() alias.Agent {
	return alias.Agent{
		FullName:     in.FullName,
		PhoneNumber:  in.PhoneNumber,
		EmailAddress: in.EmailAddress,
		AgencyName:   in.AgencyName,
	}
}

type transactionInput struct {
	PropertyID      gql.ID
	SaleDate        Date
	SalePrice       float64
	BuyerID         *gql.ID
	SellerID        *gql.ID
	TransactionType string
}

func (in transactionInput) wire() alias.Transaction {
	return alias.Transaction{
		PropertyID:      string(in.PropertyID),
		SaleDate:        time.Time(in.SaleDate),
		SalePrice:       in.SalePrice,
		BuyerID:         idValue(in.BuyerID),
		SellerID:        idValue(in.SellerID),
		TransactionType: in.TransactionType,
	}
}

type neighborhoodInput struct {
	ZoneName          string
	BoundaryPolygon   *JSON
	AveragePrice      *float64
	TotalTransactions *int32
}

func (in neighborhoodInput) wire() alias.Neighborhood {
	w := alias.Neighborhood{
		ZoneName:          in.ZoneName,
		AveragePrice:      in.AveragePrice,
		TotalTransactions: intValue(in.TotalTransactions),
	}
	if in.BoundaryPolygon != nil {
		w.BoundaryPolygon = in.BoundaryPolygon.Value
	}
	return w
}

// formInput is the free-text listing form. Numbers arrive as strings and
// are parsed leniently by the catalog.
type formInput struct {
	Address          string
	PropertyType     string
	Bedrooms         string
	Bathrooms        string
	SquareFeet       string
	YearBuilt        string
	PurchasePrice    string
	Description      *string
	Amenities        *[]*string
	AgentName        *string
	AgentPhone       *string
	AgentEmail       *string
	AgentAgency      *string
	NeighborhoodName *string
}

func (in formInput) form() catalog.FormInput {
	out := catalog.FormInput{
		Address:          in.Address,
		PropertyType:     in.PropertyType,
		Bedrooms:         in.Bedrooms,
		Bathrooms:        in.Bathrooms,
		SquareFeet:       in.SquareFeet,
		YearBuilt:        in.YearBuilt,
		PurchasePrice:    in.PurchasePrice,
		Description:      in.Description,
		AgentName:        in.AgentName,
		AgentPhone:       in.AgentPhone,
		AgentEmail:       in.AgentEmail,
		AgentAgency:      in.AgentAgency,
		NeighborhoodName: in.NeighborhoodName,
	}
	if in.Amenities != nil {
		for _, a := range *in.Amenities {
			if a != nil {
				out.Amenities = append(out.Amenities, *a)
			}
		}
	}
	return out
}

func intValue(v *int32) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}

func idValue(id *gql.ID) *string {
	if id == nil {
		return nil
	}
	s := string(*id)
	return &s
}

// floats drops null list entries.
func floats(in []*float64) []float64 {
	out := make([]float64, 0, len(in))
	for _, f := range in {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out
}
