package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sagenex/teamtree/pkg/cache"
	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/graph"
	"github.com/sagenex/teamtree/pkg/observability"
	"github.com/sagenex/teamtree/pkg/tree"
)

// Runner encapsulates pipeline execution with artifact caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete fetch → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, f Fetcher, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Fetch
	fetchStart := time.Now()
	resp, err := r.Fetch(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	result.Response = resp
	result.Stats.FetchTime = time.Since(fetchStart)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, err := r.Layout(ctx, resp, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Members = l.Stats.Members
	result.Stats.NodeCount = len(l.Nodes)
	result.Stats.EdgeCount = len(l.Edges)
	result.Stats.Skipped = len(l.Stats.Skipped)

	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout")
	}
	result.LayoutHash = cache.Hash(layoutData)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, info, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo = info
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", info.Hits,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Fetch loads the tree from f. Responses without a tree are rejected here so
// later stages can rely on a root.
func (r *Runner) Fetch(ctx context.Context, f Fetcher, opts Options) (tree.Response, error) {
	r.applyLogger(&opts)
	source := sourceOf(f)
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, source)

	start := time.Now()
	resp, err := f.FetchTeamTree(ctx)
	if err == nil && resp.Tree == nil {
		err = errors.New(errors.ErrCodeInvalidResponse, "response has no tree")
	}
	members := 0
	if err == nil {
		members = tree.Count(resp.Tree)
	}
	hooks.OnFetchComplete(ctx, source, members, time.Since(start), err)
	if err != nil {
		return tree.Response{}, err
	}

	opts.Logger.Debug("fetched tree", "source", source, "members", members)
	return resp, nil
}

// Layout computes the layout for resp. Layouts are never cached.
func (r *Runner) Layout(ctx context.Context, resp tree.Response, opts Options) (graph.Layout, error) {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, tree.Count(resp.Tree))

	start := time.Now()
	l, err := ComputeLayout(resp, opts)
	hooks.OnLayoutComplete(ctx, len(l.Nodes), len(l.Edges), time.Since(start), err)
	if err != nil {
		return graph.Layout{}, err
	}

	if n := len(l.Stats.Skipped); n > 0 {
		opts.Logger.Warn("layout skipped members", "count", n, "ids", l.Stats.Skipped)
	}
	if l.Stats.ParentDropped {
		opts.Logger.Warn("layout dropped the parent reference")
	}
	opts.Logger.Info("computed layout",
		"nodes", len(l.Nodes),
		"edges", len(l.Edges),
		"ranks", l.Stats.Ranks,
		"duration", time.Since(start))
	return l, nil
}

// RenderWithCacheInfo renders every requested format, serving artifacts from
// the cache where possible. JSON output is the layout itself and is never
// cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, CacheInfo, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, CacheInfo{}, err
	}

	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, CacheInfo{}, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	layoutHash := cache.Hash(layoutData)

	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	var info CacheInfo
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if format == FormatJSON {
			artifacts[format] = layoutData
			continue
		}

		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				cacheHooks.OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				info.Hits++
				continue
			} else if err != nil {
				opts.Logger.Warn("artifact cache read failed", "format", format, "error", err)
			}
			cacheHooks.OnCacheMiss(ctx, "artifact")
		}

		data, err := RenderFormat(ctx, l, format, opts)
		if err != nil {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, CacheInfo{}, err
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("artifact cache write failed", "format", format, "error", err)
		} else {
			cacheHooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}
	info.RenderHit = info.Hits > 0 && info.Hits == cacheable(opts.Formats)

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, info, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func cacheable(formats []string) int {
	n := 0
	for _, f := range formats {
		if f != FormatJSON {
			n++
		}
	}
	return n
}

// sourceOf names a fetcher for hooks and logs.
func sourceOf(f Fetcher) string {
	if s, ok := f.(interface{ BaseURL() string }); ok {
		return s.BaseURL()
	}
	return "static"
}
