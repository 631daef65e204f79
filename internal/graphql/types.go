package graphql

import (
	"context"

	gql "github.com/graph-gophers/graphql-go"

	"estategraph/server/internal/alias"
	"estategraph/server/internal/insight"
	"estategraph/server/internal/models"
	"estategraph/server/internal/store"
)

func gqlID(s string) *gql.ID {
	v := gql.ID(s)
	return &v
}

func str(s string) *string { return &s }

func i32(n int) *int32 {
	v := int32(n)
	return &v
}

func optI32(n *int) *int32 {
	if n == nil {
		return nil
	}
	return i32(*n)
}

func f64(f float64) *float64 { return &f }

type propertyResolver struct {
	r *Resolver
	p alias.Property
}

func (p *propertyResolver) ID() *gql.ID               { return gqlID(p.p.ID) }
func (p *propertyResolver) PropertyCategory() *string { return str(p.p.PropertyCategory) }
func (p *propertyResolver) BedroomCount() *int32      { return i32(p.p.BedroomCount) }
func (p *propertyResolver) BathroomCount() *float64   { return f64(p.p.BathroomCount) }
func (p *propertyResolver) BuiltYear() *int32         { return i32(p.p.BuiltYear) }
func (p *propertyResolver) AreaSqFt() *int32          { return i32(p.p.AreaSqFt) }
func (p *propertyResolver) LotSizeInSqFt() *int32     { return optI32(p.p.LotSizeInSqFt) }

func (p *propertyResolver) LocationDetails() *locationResolver {
	return &locationResolver{l: p.p.LocationDetails}
}

func (p *propertyResolver) OwnerAgent(ctx context.Context) (*agentResolver, error) {
	a, err := store.Lookup(ctx, p.r.store.Agents(), p.p.OwnerAgentID)
	if err != nil {
		return nil, err
	}
	return p.r.agent(a), nil
}

func (p *propertyResolver) GeoZone(ctx context.Context) (*zoneResolver, error) {
	n, err := store.Lookup(ctx, p.r.store.Neighborhoods(), p.p.GeoZoneID)
	if err != nil {
		return nil, err
	}
	return p.r.zone(n), nil
}

func (p *propertyResolver) PropertyTransactions(ctx context.Context) (*[]*transactionResolver, error) {
	txns, err := p.r.store.Transactions().Find(ctx, store.Filter{transactionPropertyPath: p.p.ID})
	if err != nil {
		return nil, err
	}
	return p.r.transactions(txns), nil
}

type locationResolver struct {
	l alias.LocationDetails
}

func (l *locationResolver) StreetAddress() *string { return str(l.l.StreetAddress) }
func (l *locationResolver) CityName() *string      { return l.l.CityName }
func (l *locationResolver) StateName() *string     { return l.l.StateName }
func (l *locationResolver) PostalCode() *string    { return l.l.PostalCode }

func (l *locationResolver) GeoCoordinates() *geoPointResolver {
	return &geoPointResolver{g: l.l.GeoCoordinates}
}

type geoPointResolver struct {
	g alias.GeoCoordinates
}

func (g *geoPointResolver) GeoFormat() *string { return g.g.GeoFormat }

func (g *geoPointResolver) Coordinates() *[]*float64 {
	if g.g.Coordinates == nil {
		return nil
	}
	out := make([]*float64, len(g.g.Coordinates))
	for i := range g.g.Coordinates {
		out[i] = &g.g.Coordinates[i]
	}
	return &out
}

type agentResolver struct {
	r *Resolver
	a alias.Agent
}

func (a *agentResolver) ID() *gql.ID           { return gqlID(a.a.ID) }
func (a *agentResolver) FullName() *string     { return str(a.a.FullName) }
func (a *agentResolver) PhoneNumber() *string  { return a.a.PhoneNumber }
func (a *agentResolver) EmailAddress() *string { return a.a.EmailAddress }
func (a *agentResolver) AgencyName() *string   { return a.a.AgencyName }

func (a *agentResolver) ManagedProperties(ctx context.Context) (*[]*propertyResolver, error) {
	props, err := a.r.store.Properties().Find(ctx, store.Filter{propertyOwnerPath: a.a.ID})
	if err != nil {
		return nil, err
	}
	return a.r.properties(props), nil
}

// agentInsightResolver reads the stored agent without renaming.
type agentInsightResolver struct {
	a models.Agent
}

func (a *agentInsightResolver) Name() *string   { return str(a.a.Name) }
func (a *agentInsightResolver) Phone() *string  { return a.a.Phone }
func (a *agentInsightResolver) Email() *string  { return a.a.Email }
func (a *agentInsightResolver) Agency() *string { return a.a.Agency }

type transactionResolver struct {
	r *Resolver
	t alias.Transaction
}

func (t *transactionResolver) ID() *gql.ID              { return gqlID(t.t.ID) }
func (t *transactionResolver) SalePrice() *float64      { return f64(t.t.SalePrice) }
func (t *transactionResolver) TransactionType() *string { return str(t.t.TransactionType) }

func (t *transactionResolver) SaleDate() *Date {
	d := Date(t.t.SaleDate)
	return &d
}

func (t *transactionResolver) RelatedProperty(ctx context.Context) (*propertyResolver, error) {
	p, err := store.Lookup(ctx, t.r.store.Properties(), &t.t.PropertyID)
	if err != nil {
		return nil, err
	}
	return t.r.property(p), nil
}

func (t *transactionResolver) Buyer(ctx context.Context) (*agentResolver, error) {
	a, err := store.Lookup(ctx, t.r.store.Agents(), t.t.BuyerID)
	if err != nil {
		return nil, err
	}
	return t.r.agent(a), nil
}

func (t *transactionResolver) Seller(ctx context.Context) (*agentResolver, error) {
	a, err := store.Lookup(ctx, t.r.store.Agents(), t.t.SellerID)
	if err != nil {
		return nil, err
	}
	return t.r.agent(a), nil
}

type zoneResolver struct {
	r *Resolver
	n alias.Neighborhood
}

func (z *zoneResolver) ID() *gql.ID               { return gqlID(z.n.ID) }
func (z *zoneResolver) ZoneName() *string         { return str(z.n.ZoneName) }
func (z *zoneResolver) AveragePrice() *float64    { return z.n.AveragePrice }
func (z *zoneResolver) TotalTransactions() *int32 { return optI32(z.n.TotalTransactions) }

func (z *zoneResolver) BoundaryPolygon() *JSON {
	if z.n.BoundaryPolygon == nil {
		return nil
	}
	return &JSON{Value: z.n.BoundaryPolygon}
}

func (z *zoneResolver) PropertiesInZone(ctx context.Context) (*[]*propertyResolver, error) {
	props, err := z.r.store.Properties().Find(ctx, store.Filter{propertyZonePath: z.n.ID})
	if err != nil {
		return nil, err
	}
	return z.r.properties(props), nil
}

type estateValueResolver struct {
	v insight.EstateValue
}

func (e *estateValueResolver) PropertyID() *gql.ID          { return gqlID(e.v.PropertyID) }
func (e *estateValueResolver) EstimatedValue() *float64     { return f64(e.v.EstimatedValue) }
func (e *estateValueResolver) BasedOnZoneAverage() *float64 { return f64(e.v.BasedOnZoneAverage) }
func (e *estateValueResolver) AreaSqFt() *int32             { return i32(e.v.AreaSqFt) }

type taxInfoResolver struct {
	t insight.TaxInfo
}

func (t *taxInfoResolver) PropertyID() *gql.ID    { return gqlID(t.t.PropertyID) }
func (t *taxInfoResolver) LastSoldFor() *float64  { return f64(t.t.LastSoldFor) }
func (t *taxInfoResolver) TaxRate() *float64      { return f64(t.t.TaxRate) }
func (t *taxInfoResolver) EstimatedTax() *float64 { return f64(t.t.EstimatedTax) }
func (t *taxInfoResolver) HandledBy() *string     { return str(t.t.HandledBy) }

type insightResolver struct {
	r  *Resolver
	in *insight.PropertyInsight
}

func (i *insightResolver) PropertyDetails() *propertyResolver {
	return i.r.property(&i.in.PropertyDetails)
}

func (i *insightResolver) MarketValue() *estateValueResolver {
	return &estateValueResolver{v: i.in.MarketValue}
}

func (i *insightResolver) TaxEstimate() *taxInfoResolver {
	if i.in.TaxEstimate == nil {
		return nil
	}
	return &taxInfoResolver{t: *i.in.TaxEstimate}
}
