package observability

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event as a debug line, and failures as warnings.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

// Register installs h as pipeline, cache and HTTP hooks.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) done(msg string, err error, kv ...any) {
	if err != nil {
		h.Logger.Warn(msg+" failed", append(kv, "err", err)...)
		return
	}
	h.Logger.Debug(msg, kv...)
}

func (h *LogHooks) OnFetchStart(_ context.Context, source string) {
	h.Logger.Debug("fetch", "source", source)
}

func (h *LogHooks) OnFetchComplete(_ context.Context, source string, members int, d time.Duration, err error) {
	h.done("fetched tree", err, "source", source, "members", members, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnLayoutStart(_ context.Context, members int) {
	h.Logger.Debug("layout", "members", members)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, nodes, edges int, d time.Duration, err error) {
	h.done("laid out tree", err, "nodes", nodes, "edges", edges, "took", d.Round(time.Microsecond))
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render", "formats", strings.Join(formats, ","))
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("rendered", err, "formats", strings.Join(formats, ","), "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Warn("request failed", "method", method, "host", host, "path", path, "err", err)
}
