package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/sagenex/teamtree/internal/config"
	"github.com/sagenex/teamtree/pkg/backend"
	"github.com/sagenex/teamtree/pkg/cache"
	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/observability"
)

const treeJSON = `{
  "tree": {
    "userId": "U1", "fullName": "Ada", "packageUSD": 1000, "isSplitSponsor": false,
    "children": [
      {"userId": "U2", "fullName": "Bo", "packageUSD": 500, "isSplitSponsor": false, "children": []},
      {"userId": "U3", "fullName": "Cy", "packageUSD": 250, "isSplitSponsor": true, "originalSponsorId": "U9",
       "children": [
         {"userId": "U4", "fullName": "Di", "packageUSD": 100, "isSplitSponsor": false, "children": []}
       ]}
    ]
  },
  "parent": {"userId": "SPONSOR1", "fullName": "Sam"}
}`

// testEnv isolates a CLI run: config, cache and snapshot directories live in
// a temp dir, TEAMTREE_* variables are cleared and status output is captured.
type testEnv struct {
	dir    string
	status *bytes.Buffer
	logs   *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, k := range []string{
		config.EnvAPIURL, config.EnvToken, config.EnvRedisAddr, config.EnvMongoURI,
		config.EnvCache, config.EnvServerAddr, config.EnvConfig, "TEAMTREE_TIMEOUT", "TEAMTREE_STRICT",
	} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Chdir(dir)

	env := &testEnv{dir: dir, status: &bytes.Buffer{}, logs: &bytes.Buffer{}}
	prevOut, prevSpin := stdout, spinnerOut
	stdout, spinnerOut = env.status, io.Discard
	t.Cleanup(func() {
		stdout, spinnerOut = prevOut, prevSpin
		observability.Reset()
	})
	return env
}

// run executes the root command with args and returns what the command wrote
// to its output stream.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(e.logs, log.DebugLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// fakeAPI is a Sagenex backend accepting the token "good".
type fakeAPI struct {
	mu     sync.Mutex
	tree   string
	placed []backend.PlacementRequest
}

func newFakeAPI(t *testing.T) (*fakeAPI, string) {
	t.Helper()
	api := &fakeAPI{tree: treeJSON}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv.URL
}

func (a *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer good" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	a.mu.Lock()
	defer a.mu.Unlock()
	switch r.URL.Path {
	case backend.PathTeamTree:
		_, _ = w.Write([]byte(a.tree))
	case backend.PathPlacementQueue:
		_, _ = w.Write([]byte(`[{"userId":"N1","fullName":"Neo","packageUSD":100,"sponsorId":"U1","createdAt":"2026-01-02T03:04:05Z"}]`))
	case backend.PathPlace:
		var req backend.PlacementRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a.placed = append(a.placed, req)
		_, _ = w.Write([]byte(`{"message":"User placed successfully"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no route"}`))
	}
}

// =============================================================================
// Config & factories
// =============================================================================

func TestLoadConfigFlagOverrides(t *testing.T) {
	newTestEnv(t)
	t.Setenv(config.EnvToken, "from-env")

	c := New(io.Discard, log.InfoLevel)
	c.apiURL = "https://api.example.com"
	c.token = "from-flag"
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if c.Config.API.URL != "https://api.example.com" {
		t.Errorf("URL = %q", c.Config.API.URL)
	}
	if c.Config.API.Token != "from-flag" {
		t.Errorf("Token = %q, want flag value", c.Config.API.Token)
	}
}

func TestLoadConfigRejectsBadURL(t *testing.T) {
	newTestEnv(t)
	c := New(io.Discard, log.InfoLevel)
	c.apiURL = "ftp://example.com"
	err := c.loadConfig()
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestRequireToken(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	if err := c.requireToken(); !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("err = %v, want UNAUTHORIZED", err)
	}
	c.Config.API.Token = "t"
	if err := c.requireToken(); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestNewCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		backend string
		noCache bool
		check   func(t *testing.T, c cache.Cache)
	}{
		{"no-cache flag wins", config.CacheFile, true, func(t *testing.T, c cache.Cache) {
			if _, ok := c.(*cache.NullCache); !ok {
				t.Errorf("got %T, want *cache.NullCache", c)
			}
		}},
		{"none", config.CacheNone, false, func(t *testing.T, c cache.Cache) {
			if _, ok := c.(*cache.NullCache); !ok {
				t.Errorf("got %T, want *cache.NullCache", c)
			}
		}},
		{"memory", config.CacheMemory, false, func(t *testing.T, c cache.Cache) {
			if _, ok := c.(*cache.MemoryCache); !ok {
				t.Errorf("got %T, want *cache.MemoryCache", c)
			}
		}},
		{"file", config.CacheFile, false, func(t *testing.T, c cache.Cache) {
			fc, ok := c.(*cache.FileCache)
			if !ok {
				t.Fatalf("got %T, want *cache.FileCache", c)
			}
			if want := filepath.Join(env.dir, "cache", appName); fc.Dir() != want {
				t.Errorf("Dir() = %q, want %q", fc.Dir(), want)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(io.Discard, log.InfoLevel)
			c.Config.Cache.Backend = tt.backend
			ch, err := c.newCache(ctx, tt.noCache)
			if err != nil {
				t.Fatalf("newCache: %v", err)
			}
			defer ch.Close()
			tt.check(t, ch)
		})
	}
}

func TestNewCacheRedisUnreachable(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.Config.Cache.Backend = config.CacheRedis
	c.Config.Cache.RedisAddr = "127.0.0.1:1"
	if _, err := c.newCache(context.Background(), false); !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("err = %v, want NETWORK_ERROR", err)
	}
}

func TestCacheDir(t *testing.T) {
	env := newTestEnv(t)
	c := New(io.Discard, log.InfoLevel)

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(env.dir, "cache", "teamtree"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}

	c.Config.Cache.Dir = "/var/cache/custom"
	if dir, _ := c.cacheDir(); dir != "/var/cache/custom" {
		t.Errorf("configured cacheDir() = %q", dir)
	}
}

func TestPipelineOptionsFromConfig(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.Config.Render.Formats = []string{"svg", "png"}
	c.Config.Render.Title = "Team"
	c.Config.Layout.NodeSep = 40

	opts := c.pipelineOptions()
	if strings.Join(opts.Formats, ",") != "svg,png" || opts.Title != "Team" || opts.Layout.NodeSep != 40 {
		t.Errorf("options = %+v", opts)
	}
	opts.Formats[0] = "dot"
	if c.Config.Render.Formats[0] != "svg" {
		t.Error("pipelineOptions must copy the configured formats")
	}
}
