package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dmitrijs2005/sealfin/internal/client/models"
	"github.com/dmitrijs2005/sealfin/internal/logging"
)

// ClientName is reported to servers in the authorization header.
const ClientName = "Sealfin"

// Options configures HTTP clients built by NewFactory.
type Options struct {
	DeviceName    string
	DeviceID      string
	ClientVersion string

	ConnectTimeout time.Duration
	SocketTimeout  time.Duration
	RequestTimeout time.Duration

	// RetryAttempts is the total number of tries for idempotent reads.
	RetryAttempts uint
	RetryDelay    time.Duration

	Logger logging.Logger
}

// DefaultOptions returns the stock timeouts: connect 6s, response 10s,
// request 30s.
func DefaultOptions() Options {
	return Options{
		DeviceName:     "sealfin-cli",
		ClientVersion:  "0.1.0",
		ConnectTimeout: 6 * time.Second,
		SocketTimeout:  10 * time.Second,
		RequestTimeout: 30 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     250 * time.Millisecond,
	}
}

// HTTPClient talks to one server with one credential.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
	opts    Options
	log     logging.Logger
}

// NewHTTPClient creates a client. hc may be shared between clients.
func NewHTTPClient(baseURL, token string, hc *http.Client, opts Options) *HTTPClient {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = 1
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    hc,
		opts:    opts,
		log:     opts.Logger,
	}
}

// NewHTTP returns an *http.Client with the configured timeouts.
func NewHTTP(opts Options) *http.Client {
	dialer := &net.Dialer{Timeout: opts.ConnectTimeout}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = dialer.DialContext
	tr.ResponseHeaderTimeout = opts.SocketTimeout
	return &http.Client{Transport: tr, Timeout: opts.RequestTimeout}
}

// NewFactory returns a Factory whose clients share one connection pool.
func NewFactory(opts Options) Factory {
	hc := NewHTTP(opts)
	return func(baseURL, token string) Client {
		return NewHTTPClient(baseURL, token, hc, opts)
	}
}

// authorization renders the MediaBrowser header value.
func (c *HTTPClient) authorization() string {
	q := func(s string) string { return strings.ReplaceAll(s, `"`, "") }
	var b strings.Builder
	fmt.Fprintf(&b, `MediaBrowser Client="%s", Device="%s", DeviceId="%s", Version="%s"`,
		ClientName, q(c.opts.DeviceName), q(c.opts.DeviceID), q(c.opts.ClientVersion))
	if c.token != "" {
		fmt.Fprintf(&b, `, Token="%s"`, q(c.token))
	}
	return b.String()
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", c.authorization())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrProtocol, method, path, err)
	}
	return nil
}

// get performs an idempotent read, retrying while the server is unavailable.
func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out any) error {
	return retry.Do(
		func() error { return c.do(ctx, http.MethodGet, path, query, nil, out) },
		retry.Context(ctx),
		retry.Attempts(c.opts.RetryAttempts),
		retry.Delay(c.opts.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, ErrUnavailable) }),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug(ctx, "retrying request", "path", path, "attempt", n+1, "err", err)
		}),
	)
}

func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := strings.TrimSpace(string(msg))
	if detail == "" {
		detail = resp.Status
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, detail)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", ErrUnavailable, detail)
	default:
		return fmt.Errorf("%w: %s", ErrProtocol, detail)
	}
}

func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func (c *HTTPClient) AuthenticateByName(ctx context.Context, username, password string) (*AuthResult, error) {
	body := map[string]string{"Username": username, "Pw": password}

	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/Users/AuthenticateByName", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) PublicSystemInfo(ctx context.Context) (*SystemInfo, error) {
	var res SystemInfo
	if err := c.get(ctx, "/System/Info/Public", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (q ItemsQuery) values() url.Values {
	v := url.Values{}
	set := func(key string, vals []string) {
		if len(vals) > 0 {
			v.Set(key, strings.Join(vals, ","))
		}
	}
	set("ids", q.IDs)
	set("includeItemTypes", q.IncludeItemTypes)
	set("excludeLocationTypes", q.ExcludeLocationTypes)
	set("filters", q.Filters)
	set("sortBy", q.SortBy)
	set("fields", q.Fields)
	if q.ParentID != "" {
		v.Set("parentId", q.ParentID)
	}
	if q.Recursive {
		v.Set("recursive", "true")
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", q.SortOrder)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	v.Set("enableUserData", "true")
	return v
}

func (c *HTTPClient) list(ctx context.Context, path string, query url.Values) ([]models.Item, error) {
	var res itemsResult
	if err := c.get(ctx, path, query, &res); err != nil {
		return nil, err
	}
	if res.Items == nil {
		return []models.Item{}, nil
	}
	return res.Items, nil
}

func (c *HTTPClient) Items(ctx context.Context, q ItemsQuery) ([]models.Item, error) {
	return c.list(ctx, "/Items", q.values())
}

func (c *HTTPClient) ResumeItems(ctx context.Context, fields ...string) ([]models.Item, error) {
	return c.list(ctx, "/UserItems/Resume", ItemsQuery{Fields: fields}.values())
}

func (c *HTTPClient) NextUp(ctx context.Context, fields ...string) ([]models.Item, error) {
	return c.list(ctx, "/Shows/NextUp", ItemsQuery{Fields: fields}.values())
}

func (c *HTTPClient) MarkPlayed(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodPost, "/UserPlayedItems/"+url.PathEscape(itemID), nil, nil, nil)
}

func (c *HTTPClient) MarkUnplayed(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/UserPlayedItems/"+url.PathEscape(itemID), nil, nil, nil)
}

func (c *HTTPClient) MarkFavorite(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodPost, "/UserFavoriteItems/"+url.PathEscape(itemID), nil, nil, nil)
}

func (c *HTTPClient) UnmarkFavorite(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/UserFavoriteItems/"+url.PathEscape(itemID), nil, nil, nil)
}

var _ Client = (*HTTPClient)(nil)
