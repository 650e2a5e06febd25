package catalog_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"StreamBox/internal/catalog"
)

func newCatalogTS(t *testing.T, deps catalog.HTTPDeps) *httptest.Server {
	t.Helper()

	c, err := catalog.FromDataset(catalog.Dataset{
		Categories: []string{"Action", "Comedy"},
		Videos: []catalog.Video{
			{ID: catalog.NumericVideoID(1), Title: "Fast Car", Category: "Action", DurationMinutes: 90},
			{ID: catalog.NumericVideoID(2), Title: "Funny Bone", Category: "Comedy", DurationMinutes: 80},
		},
	})
	if err != nil {
		t.Fatalf("FromDataset: %v", err)
	}

	deps.Log = zap.NewNop()
	deps.Service = "catalog"
	ts := httptest.NewServer(catalog.NewHandler(&catalog.Server{Catalog: c, Log: zap.NewNop()}, deps))
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func TestHTTP_Categories(t *testing.T) {
	ts := newCatalogTS(t, catalog.HTTPDeps{})

	resp, raw := get(t, ts.URL+"/categories", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	var cats []string
	if err := json.Unmarshal(raw, &cats); err != nil {
		t.Fatalf("decode: %v body=%s", err, raw)
	}
	if strings.Join(cats, ",") != "Action,Comedy" {
		t.Fatalf("categories=%v", cats)
	}
}

func TestHTTP_VideosFilter(t *testing.T) {
	ts := newCatalogTS(t, catalog.HTTPDeps{})

	cases := map[string]int{
		"/videos":                  2,
		"/videos?category=":        2,
		"/videos?category=action":  1,
		"/videos?category=COMEDY":  1,
		"/videos?category=western": 0,
	}
	for path, want := range cases {
		resp, raw := get(t, ts.URL+path, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status=%d", path, resp.StatusCode)
		}

		var vs []map[string]any
		if err := json.Unmarshal(raw, &vs); err != nil {
			t.Fatalf("%s decode: %v body=%s", path, err, raw)
		}
		if vs == nil || len(vs) != want {
			t.Fatalf("%s len=%d want %d body=%s", path, len(vs), want, raw)
		}
	}
}

func TestHTTP_GetVideo(t *testing.T) {
	ts := newCatalogTS(t, catalog.HTTPDeps{})

	resp, raw := get(t, ts.URL+"/videos/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}

	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, k := range []string{"id", "title", "category", "duration", "thumbnailUrl", "description"} {
		if _, ok := v[k]; !ok {
			t.Fatalf("missing field %q in %s", k, raw)
		}
	}
	if v["id"] != float64(1) || v["title"] != "Fast Car" || v["duration"] != float64(90) {
		t.Fatalf("body=%s", raw)
	}
}

func TestHTTP_GetVideoNotFound(t *testing.T) {
	ts := newCatalogTS(t, catalog.HTTPDeps{})

	resp, raw := get(t, ts.URL+"/videos/3", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Video not found" {
		t.Fatalf("message=%q", body.Message)
	}
}

func TestHTTP_GetVideoReservedCharacters(t *testing.T) {
	c, err := catalog.FromDataset(catalog.Dataset{
		Categories: []string{"Action"},
		Videos: []catalog.Video{
			{ID: catalog.NewVideoID("a/b"), Title: "Slash", Category: "Action"},
			{ID: catalog.NewVideoID("c d"), Title: "Space", Category: "Action"},
			{ID: catalog.NewVideoID("e%f"), Title: "Percent", Category: "Action"},
		},
	})
	if err != nil {
		t.Fatalf("FromDataset: %v", err)
	}
	ts := httptest.NewServer(catalog.NewHandler(&catalog.Server{Catalog: c}, catalog.HTTPDeps{Log: zap.NewNop()}))
	t.Cleanup(ts.Close)

	for id, title := range map[string]string{"a/b": "Slash", "c d": "Space", "e%f": "Percent"} {
		resp, raw := get(t, ts.URL+"/videos/"+url.PathEscape(id), nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("id=%q status=%d body=%s", id, resp.StatusCode, raw)
		}
		var v struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if v.ID != id || v.Title != title {
			t.Fatalf("id=%q body=%s", id, raw)
		}
	}

	if resp, _ := get(t, ts.URL+"/videos/a", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("prefix lookup status=%d", resp.StatusCode)
	}
}

func TestHTTP_RateLimitKeyedByForwardedClient(t *testing.T) {
	ts := newCatalogTS(t, catalog.HTTPDeps{RateLimit: 2, RateLimitWindow: time.Minute})

	for _, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		for i := 0; i < 2; i++ {
			resp, _ := get(t, ts.URL+"/videos/1", map[string]string{"X-Forwarded-For": ip})
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("ip=%s request %d status=%d", ip, i, resp.StatusCode)
			}
		}
	}
	resp, _ := get(t, ts.URL+"/videos/1", map[string]string{"X-Forwarded-For": "203.0.113.1"})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status=%d want 429", resp.StatusCode)
	}
}

func TestHTTP_Liveness(t *testing.T) {
	ts := newCatalogTS(t, catalog.HTTPDeps{})

	resp, raw := get(t, ts.URL+"/", nil)
	if resp.StatusCode != http.StatusOK || string(raw) != "StreamBox API is running" {
		t.Fatalf("status=%d body=%q", resp.StatusCode, raw)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content-type=%q", ct)
	}

	if resp, _ := get(t, ts.URL+"/readyz", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status=%d", resp.StatusCode)
	}
}

func TestHTTP_CORSAnyOrigin(t *testing.T) {
	ts := newCatalogTS(t, catalog.HTTPDeps{})

	resp, _ := get(t, ts.URL+"/videos", map[string]string{"Origin": "http://somewhere.example"})
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin=%q", got)
	}

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/videos/1", nil)
	req.Header.Set("Origin", "http://elsewhere.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	pre, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	pre.Body.Close()
	if pre.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("preflight not allowed, status=%d", pre.StatusCode)
	}
}

func TestHTTP_RateLimit(t *testing.T) {
	ts := newCatalogTS(t, catalog.HTTPDeps{RateLimit: 2, RateLimitWindow: time.Minute})

	for i := 0; i < 2; i++ {
		if resp, _ := get(t, ts.URL+"/categories", nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status=%d", i, resp.StatusCode)
		}
	}
	if resp, _ := get(t, ts.URL+"/categories", nil); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status=%d want 429", resp.StatusCode)
	}
}

func TestHTTP_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	ts := newCatalogTS(t, catalog.HTTPDeps{
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   "s3cret",
	})

	get(t, ts.URL+"/videos/1", nil)

	if resp, _ := get(t, ts.URL+"/metrics", nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unauthenticated metrics status=%d", resp.StatusCode)
	}

	resp, raw := get(t, ts.URL+"/metrics", map[string]string{"Authorization": "Bearer s3cret"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status=%d", resp.StatusCode)
	}
	body := string(raw)
	for _, want := range []string{
		`streambox_catalog_videos 2`,
		`path="/videos/{id}"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}
