package backend

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sagenex/teamtree/pkg/buildinfo"
	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/observability"
	"github.com/sagenex/teamtree/pkg/tree"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to the Sagenex user API on behalf of one member.
// A Client is safe for concurrent use.
type Client struct {
	base      *url.URL
	token     string
	http      *http.Client
	userAgent string
}

// Option configures a [Client].
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option { return func(c *Client) { c.token = token } }

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option { return func(c *Client) { c.userAgent = ua } }

// NewClient returns a client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if err := errors.ValidateBaseURL(baseURL); err != nil {
		return nil, err
	}
	u, _ := url.Parse(strings.TrimRight(baseURL, "/"))
	c := &Client{
		base:      u,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: buildinfo.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// HasToken reports whether requests are authenticated.
func (c *Client) HasToken() bool { return c.token != "" }

// WithToken returns a copy of c that authenticates as another member.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// FetchTeamTree returns the caller's downline and placement parent.
//
// The response is decoded but not validated beyond requiring a tree, so the
// layout builder can decide how to treat duplicate or malformed members.
func (c *Client) FetchTeamTree(ctx context.Context) (tree.Response, error) {
	var resp tree.Response
	if err := c.do(ctx, http.MethodGet, PathTeamTree, nil, &resp); err != nil {
		return tree.Response{}, err
	}
	if resp.Tree == nil {
		return tree.Response{}, errors.New(errors.ErrCodeInvalidResponse, "team tree response has no tree")
	}
	return resp, nil
}

// FetchPlacementQueue returns the recruits waiting for placement.
func (c *Client) FetchPlacementQueue(ctx context.Context) ([]PendingUser, error) {
	var queue []PendingUser
	if err := c.do(ctx, http.MethodGet, PathPlacementQueue, nil, &queue); err != nil {
		return nil, err
	}
	return queue, nil
}

// PlaceUser places a pending recruit under a member of the caller's tree.
func (c *Client) PlaceUser(ctx context.Context, req PlacementRequest) (PlacementResult, error) {
	if err := errors.ValidateMemberID(req.NewUserID); err != nil {
		return PlacementResult{}, err
	}
	if err := errors.ValidateMemberID(req.PlacementParentID); err != nil {
		return PlacementResult{}, err
	}
	var res PlacementResult
	if err := c.do(ctx, http.MethodPost, PathPlace, req, &res); err != nil {
		return PlacementResult{}, err
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, v any) error {
	hooks := observability.HTTP()
	u := c.base.JoinPath(path)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	hooks.OnRequest(ctx, method, u.Host, path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, u.Host, path, err)
		return networkError(err, method, path)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, u.Host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidResponse, err, "decode %s %s", method, path)
	}
	return nil
}

func networkError(err error, method, path string) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "%s %s timed out", method, path)
	}
	var ue *url.Error
	if stderrors.As(err, &ue) && ue.Timeout() {
		return errors.Wrap(errors.ErrCodeTimeout, err, "%s %s timed out", method, path)
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, path)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := http.StatusText(resp.StatusCode)
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	if json.Unmarshal(data, &body) == nil && body.text() != "" {
		msg = body.text()
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "%s", msg)
	case http.StatusForbidden:
		return errors.New(errors.ErrCodeForbidden, "%s", msg)
	case http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s", msg)
	default:
		return errors.New(errors.ErrCodeBackend, "%s (status %d)", msg, resp.StatusCode)
	}
}
