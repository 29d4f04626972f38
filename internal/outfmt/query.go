package outfmt

import (
	"context"

	"github.com/groupdocs/assembly-cloud-go/internal/filter"
)

type queryKey struct{}

// WithQuery adds a jq query to the context
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// GetQuery retrieves the jq query from context
func GetQuery(ctx context.Context) string {
	if q, ok := ctx.Value(queryKey{}).(string); ok {
		return q
	}
	return ""
}

// ApplyQuery normalizes v and applies query to it. With no query the
// normalized value is returned as generic JSON data.
func ApplyQuery(v any, query string) (any, error) {
	data, err := toGeneric(normalize(v))
	if err != nil {
		return nil, err
	}
	return filter.Apply(data, query)
}
