package graphql

import (
	"context"

	gql "github.com/graph-gophers/graphql-go"

	"estategraph/server/internal/alias"
	"estategraph/server/internal/catalog"
	"estategraph/server/internal/insight"
	"estategraph/server/internal/models"
	"estategraph/server/internal/store"
)

// Resolver is the root of the schema: its methods resolve the Query and
// Mutation fields. Records leave the store in storage shape and are mapped
// to the wire shape before they reach a field resolver.
type Resolver struct {
	store   store.Store
	insight *insight.Engine
	catalog *catalog.Service
}

func NewResolver(s store.Store, engine *insight.Engine, svc *catalog.Service) *Resolver {
	return &Resolver{store: s, insight: engine, catalog: svc}
}

type idArgs struct {
	ID gql.ID
}

type propertyIDArgs struct {
	PropertyID gql.ID
}

// storagePath resolves a wire field to the storage field used in filters.
func storagePath[S, W any](t alias.Table[S, W], wire string) string {
	path, ok := t.StoragePath(wire)
	if !ok {
		panic("graphql: no storage path for " + t.Entity + "." + wire)
	}
	return path
}

var (
	transactionPropertyPath = storagePath(alias.Transactions, "propertyId")
	propertyOwnerPath       = storagePath(alias.Properties, "ownerAgentId")
	propertyZonePath        = storagePath(alias.Properties, "geoZoneId")
)

func (r *Resolver) ListedProperties(ctx context.Context) (*[]*propertyResolver, error) {
	all, err := r.store.Properties().Find(ctx, nil)
	if err != nil {
		return nil, err
	}
	return r.properties(all), nil
}

func (r *Resolver) ListedProperty(ctx context.Context, args idArgs) (*propertyResolver, error) {
	id := string(args.ID)
	p, err := store.Lookup(ctx, r.store.Properties(), &id)
	if err != nil {
		return nil, err
	}
	return r.property(p), nil
}

func (r *Resolver) AgentProfiles(ctx context.Context) (*[]*agentResolver, error) {
	all, err := r.store.Agents().Find(ctx, nil)
	if err != nil {
		return nil, err
	}
	return r.agents(all), nil
}

// AgentInsightz exposes agents with their storage field names.
func (r *Resolver) AgentInsightz(ctx context.Context) (*[]*agentInsightResolver, error) {
	all, err := r.store.Agents().Find(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*agentInsightResolver, len(all))
	for i := range all {
		out[i] = &agentInsightResolver{a: all[i]}
	}
	return &out, nil
}

func (r *Resolver) AgentProfile(ctx context.Context, args idArgs) (*agentResolver, error) {
	id := string(args.ID)
	a, err := store.Lookup(ctx, r.store.Agents(), &id)
	if err != nil {
		return nil, err
	}
	return r.agent(a), nil
}

func (r *Resolver) GeoZones(ctx context.Context) (*[]*zoneResolver, error) {
	all, err := r.store.Neighborhoods().Find(ctx, nil)
	if err != nil {
		return nil, err
	}
	return r.zones(all), nil
}

func (r *Resolver) GeoZone(ctx context.Context, args idArgs) (*zoneResolver, error) {
	id := string(args.ID)
	n, err := store.Lookup(ctx, r.store.Neighborhoods(), &id)
	if err != nil {
		return nil, err
	}
	return r.zone(n), nil
}

func (r *Resolver) PropertyTransactions(ctx context.Context) (*[]*transactionResolver, error) {
	all, err := r.store.Transactions().Find(ctx, nil)
	if err != nil {
		return nil, err
	}
	return r.transactions(all), nil
}

func (r *Resolver) PropertyTransaction(ctx context.Context, args idArgs) (*transactionResolver, error) {
	id := string(args.ID)
	t, err := store.Lookup(ctx, r.store.Transactions(), &id)
	if err != nil {
		return nil, err
	}
	return r.transaction(t), nil
}

func (r *Resolver) EstateValue(ctx context.Context, args propertyIDArgs) (*estateValueResolver, error) {
	v, err := r.insight.EstimateValue(ctx, string(args.PropertyID))
	if err != nil {
		return nil, err
	}
	return &estateValueResolver{v: *v}, nil
}

func (r *Resolver) TaxInfo(ctx context.Context, args propertyIDArgs) (*taxInfoResolver, error) {
	t, err := r.insight.TaxInfo(ctx, string(args.PropertyID))
	if err != nil || t == nil {
		return nil, err
	}
	return &taxInfoResolver{t: *t}, nil
}

func (r *Resolver) PropertyInsight(ctx context.Context, args propertyIDArgs) (*insightResolver, error) {
	in, err := r.insight.PropertyInsight(ctx, string(args.PropertyID))
	if err != nil {
		return nil, err
	}
	return &insightResolver{r: r, in: in}, nil
}

// Mutations

func (r *Resolver) AddProperty(ctx context.Context, args struct{ Input propertyInput }) (*propertyResolver, error) {
	p := alias.Properties.ToStorage(args.Input.wire())
	created, err := r.catalog.AddProperty(ctx, &p)
	if err != nil {
		return nil, err
	}
	return r.property(created), nil
}

func (r *Resolver) AddAgent(ctx context.Context, args struct{ Input agentInput }) (*agentResolver, error) {
	a := alias.Agents.ToStorage(args.Input.wire())
	created, err := r.catalog.AddAgent(ctx, &a)
	if err != nil {
		return nil, err
	}
	return r.agent(created), nil
}

func (r *Resolver) AddTransaction(ctx context.Context, args struct{ Input transactionInput }) (*transactionResolver, error) {
	t := alias.Transactions.ToStorage(args.Input.wire())
	created, err := r.catalog.AddTransaction(ctx, &t)
	if err != nil {
		return nil, err
	}
	return r.transaction(created), nil
}

func (r *Resolver) AddNeighborhood(ctx context.Context, args struct{ Input neighborhoodInput }) (*zoneResolver, error) {
	n := alias.Neighborhoods.ToStorage(args.Input.wire())
	created, err := r.catalog.AddNeighborhood(ctx, &n)
	if err != nil {
		return nil, err
	}
	return r.zone(created), nil
}

func (r *Resolver) AddPropertyFromForm(ctx context.Context, args struct{ Input formInput }) (*propertyResolver, error) {
	created, err := r.catalog.AddPropertyFromForm(ctx, args.Input.form())
	if err != nil {
		return nil, err
	}
	return r.property(created), nil
}

// Wrapping helpers. A nil record resolves to null.

func (r *Resolver) property(p *models.Property) *propertyResolver {
	if p == nil {
		return nil
	}
	return &propertyResolver{r: r, p: alias.Properties.ToWire(*p)}
}

func (r *Resolver) properties(all []models.Property) *[]*propertyResolver {
	out := make([]*propertyResolver, len(all))
	for i, w := range alias.Properties.ToWireAll(all) {
		out[i] = &propertyResolver{r: r, p: w}
	}
	return &out
}

func (r *Resolver) agent(a *models.Agent) *agentResolver {
	if a == nil {
		return nil
	}
	return &agentResolver{r: r, a: alias.Agents.ToWire(*a)}
}

func (r *Resolver) agents(all []models.Agent) *[]*agentResolver {
	out := make([]*agentResolver, len(all))
	for i, w := range alias.Agents.ToWireAll(all) {
		out[i] = &agentResolver{r: r, a: w}
	}
	return &out
}

func (r *Resolver) transaction(t *models.Transaction) *transactionResolver {
	if t == nil {
		return nil
	}
	return &transactionResolver{r: r, t: alias.Transactions.ToWire(*t)}
}

func (r *Resolver) transactions(all []models.Transaction) *[]*transactionResolver {
	out := make([]*transactionResolver, len(all))
	for i, w := range alias.Transactions.ToWireAll(all) {
		out[i] = &transactionResolver{r: r, t: w}
	}
	return &out
}

func (r *Resolver) zone(n *models.Neighborhood) *zoneResolver {
	if n == nil {
		return nil
	}
	return &zoneResolver{r: r, n: alias.Neighborhoods.ToWire(*n)}
}

func (r *Resolver) zones(all []models.Neighborhood) *[]*zoneResolver {
	out := make([]*zoneResolver, len(all))
	for i, w := range alias.Neighborhoods.ToWireAll(all) {
		out[i] = &zoneResolver{r: r, n: w}
	}
	return &out
}
