package pipeline

import (
	"context"

	"github.com/sagenex/teamtree/pkg/tree"
)

// Fetcher loads the placement tree visible to the caller.
// [*backend.Client] is the production implementation.
type Fetcher interface {
	FetchTeamTree(ctx context.Context) (tree.Response, error)
}

// FetcherFunc adapts a function to [Fetcher].
type FetcherFunc func(ctx context.Context) (tree.Response, error)

// FetchTeamTree calls f.
func (f FetcherFunc) FetchTeamTree(ctx context.Context) (tree.Response, error) { return f(ctx) }

// Static returns a fetcher that always yields resp, for trees read from a
// file or posted to the HTTP service.
func Static(resp tree.Response) Fetcher {
	return FetcherFunc(func(context.Context) (tree.Response, error) { return resp, nil })
}
