package browse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"StreamBox/internal/catalog"
	"StreamBox/pkg/kit"
)

var (
	ErrVideoNotFound       = errors.New("video not found")
	ErrUpstreamUnreachable = errors.New("catalog unreachable")
	ErrUpstreamBadStatus   = errors.New("catalog bad status")

	errStatusNotFound = errors.New("catalog status 404")
)

const (
	defaultClientTimeout = 3 * time.Second
	maxResponseBytes     = 8 << 20

	breakerFailures = 5
	breakerCooldown = 10 * time.Second
)

// CatalogAPI is the read surface of the catalog service.
type CatalogAPI interface {
	ListCategories(ctx context.Context) ([]string, error)
	ListVideos(ctx context.Context, category string) ([]catalog.Video, error)
	GetVideo(ctx context.Context, id string) (catalog.Video, error)
}

// Client calls the catalog service over HTTP. Calls are never retried; after
// consecutive transport failures the breaker opens and calls fail fast with
// ErrUpstreamUnreachable until the cooldown passes.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *zap.Logger

	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{MaxIdleConnsPerHost: 10, IdleConnTimeout: 30 * time.Second},
		},
		Log: log,
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "catalog",
		Timeout: breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		IsSuccessful: func(err error) bool {
			return !errors.Is(err, ErrUpstreamUnreachable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return c
}

// Close releases idle upstream connections.
func (c *Client) Close() {
	c.HTTP.CloseIdleConnections()
}

func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.getJSON(ctx, "/categories", &out); err != nil {
		return nil, listErr(err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// ListVideos passes category through as the server-side filter; an empty
// category lists everything.
func (c *Client) ListVideos(ctx context.Context, category string) ([]catalog.Video, error) {
	path := "/videos"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}

	var out []catalog.Video
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, listErr(err)
	}
	if out == nil {
		out = []catalog.Video{}
	}
	return out, nil
}

func (c *Client) GetVideo(ctx context.Context, id string) (catalog.Video, error) {
	var v catalog.Video
	err := c.getJSON(ctx, "/videos/"+url.PathEscape(id), &v)
	if errors.Is(err, errStatusNotFound) {
		return catalog.Video{}, ErrVideoNotFound
	}
	if err != nil {
		return catalog.Video{}, err
	}
	return v, nil
}

// Ping checks the catalog's readiness endpoint, bypassing the breaker.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.fetch(ctx, "/readyz")
	return listErr(err)
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, path)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrUpstreamUnreachable, err)
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrUpstreamBadStatus, path, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if reqID := chimw.GetReqID(ctx); reqID != "" {
		req.Header.Set(chimw.RequestIDHeader, reqID)
	}
	// The catalog rate-limits per end user, not per browse instance.
	if ip := kit.ClientIPFromContext(ctx); ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errStatusNotFound
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status=%d", ErrUpstreamBadStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstreamUnreachable, err)
	}
	return raw, nil
}

// listErr folds a 404 on a collection route into ErrUpstreamBadStatus.
func listErr(err error) error {
	if errors.Is(err, errStatusNotFound) {
		return fmt.Errorf("%w: status=%d", ErrUpstreamBadStatus, http.StatusNotFound)
	}
	return err
}

var _ CatalogAPI = (*Client)(nil)
