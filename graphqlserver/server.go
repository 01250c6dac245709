package graphqlserver

import (
	"context"
	"encoding/json"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"gorm.io/gorm"

	"gaugetrack.GO/graphql"
	gqlmodels "gaugetrack.GO/graphql/models"
	"gaugetrack.GO/graphql/registry"
	"gaugetrack.GO/graphql/resolvers"
)

// RootResolver is the root for graphql-go. All fields are read-only;
// lifecycle mutations stay on the REST surface where they carry the
// actor from auth.
type RootResolver struct {
	DB *gorm.DB
}

// Query returns the query resolver.
func (r *RootResolver) Query() *QueryResolver {
	return &QueryResolver{db: r.DB}
}

// QueryResolver implements Query fields. Delegates to resolvers package.
type QueryResolver struct {
	db *gorm.DB
}

// GaugeArgs matches the gauge query arguments.
type GaugeArgs struct {
	ExternalID string
}

func (r *QueryResolver) Gauge(ctx context.Context, args GaugeArgs) (*gqlmodels.Gauge, error) {
	res := resolvers.NewResolver(r.db)
	return res.Query().Gauge(ctx, args.ExternalID)
}

// SetArgs matches the set and setHistory query arguments.
type SetArgs struct {
	SetID string
}

func (r *QueryResolver) Set(ctx context.Context, args SetArgs) (*gqlmodels.SetDetail, error) {
	res := resolvers.NewResolver(r.db)
	return res.Query().Set(ctx, args.SetID)
}

func (r *QueryResolver) SetHistory(ctx context.Context, args SetArgs) ([]*gqlmodels.HistoryEntry, error) {
	res := resolvers.NewResolver(r.db)
	return res.Query().SetHistory(ctx, args.SetID)
}

// SparesArgs matches the spares query arguments (defaults in schema: pageSize=50, currentPage=1).
type SparesArgs struct {
	CategoryID  *int32
	PageSize    int32
	CurrentPage int32
}

func (r *QueryResolver) Spares(ctx context.Context, args SparesArgs) ([]*gqlmodels.Gauge, error) {
	res := resolvers.NewResolver(r.db)
	ps, cp := int(args.PageSize), int(args.CurrentPage)
	if ps <= 0 {
		ps = 50
	}
	if cp <= 0 {
		cp = 1
	}
	return res.Query().Spares(ctx, args.CategoryID, ps, cp)
}

// SearchArgs matches the searchGauges query arguments (defaults in schema: pageSize=20, currentPage=1).
type SearchArgs struct {
	Query       string
	PageSize    int32
	CurrentPage int32
}

func (r *QueryResolver) SearchGauges(ctx context.Context, args SearchArgs) (*gqlmodels.GaugeSearchResult, error) {
	res := resolvers.NewResolver(r.db)
	ps, cp := int(args.PageSize), int(args.CurrentPage)
	if ps <= 0 {
		ps = 20
	}
	if cp <= 0 {
		cp = 1
	}
	return res.Query().SearchGauges(ctx, args.Query, ps, cp)
}

// ExtensionArgs for _extension(name, args).
type ExtensionArgs struct {
	Name string
	Args *string
}

func (r *QueryResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	var m map[string]interface{}
	if args.Args != nil && *args.Args != "" {
		_ = json.Unmarshal([]byte(*args.Args), &m)
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	out, err := registry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// NewSchema parses the schema and returns a graphql-go Schema.
func NewSchema(db *gorm.DB) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), &RootResolver{DB: db}, gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
