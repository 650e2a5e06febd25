package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func writeDataset(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "videos.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeDataset(t, `{
		"categories": ["Action", "Comedy"],
		"videos": [
			{"id": 1, "title": "Fast Car", "category": "Action", "duration": 90, "thumbnailUrl": "https://x/1.jpg", "description": ""},
			{"id": "abc", "title": "Funny Bone", "category": "Comedy", "duration": 80.5}
		]
	}`)

	c, err := Load(t.Context(), FileSource{Path: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("len=%d", c.Len())
	}
	if got := c.Source(); got != "file:"+path {
		t.Fatalf("source=%q", got)
	}

	v, err := c.GetVideo("abc")
	if err != nil {
		t.Fatalf("GetVideo(abc): %v", err)
	}
	if v.DurationMinutes != 80.5 {
		t.Fatalf("duration=%v", v.DurationMinutes)
	}
}

func TestLoad_Failures(t *testing.T) {
	cases := map[string]string{
		"malformed":          `{"categories": [`,
		"trailing data":      `{"categories": [], "videos": []} {}`,
		"missing videos":     `{"categories": ["Action"]}`,
		"empty title":        `{"categories": [], "videos": [{"id": 1, "title": "", "category": "Action", "duration": 1}]}`,
		"negative duration":  `{"categories": [], "videos": [{"id": 1, "title": "A", "category": "Action", "duration": -1}]}`,
		"empty id":           `{"categories": [], "videos": [{"id": "", "title": "A", "category": "Action", "duration": 1}]}`,
		"null id":            `{"categories": [], "videos": [{"id": null, "title": "A", "category": "Action", "duration": 1}]}`,
		"bool id":            `{"categories": [], "videos": [{"id": true, "title": "A", "category": "Action", "duration": 1}]}`,
		"duplicate category": `{"categories": ["Action", "Action"], "videos": []}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(t.Context(), FileSource{Path: writeDataset(t, body)})
			if !errors.Is(err, ErrLoad) {
				t.Fatalf("err=%v want ErrLoad", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.Context(), FileSource{Path: filepath.Join(t.TempDir(), "nope.json")})
	if !errors.Is(err, ErrLoad) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v", err)
	}
}

func TestLoad_Embedded(t *testing.T) {
	c, err := Load(t.Context(), EmbeddedSource{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() == 0 || len(c.Categories()) == 0 {
		t.Fatalf("embedded dataset is empty")
	}
}

func TestVideoID_RoundTripKeepsForm(t *testing.T) {
	in := `[{"id":1,"title":"A","category":"c","duration":1,"thumbnailUrl":"","description":""},` +
		`{"id":"1","title":"B","category":"c","duration":1,"thumbnailUrl":"","description":""}]`

	var vs []Video
	if err := json.Unmarshal([]byte(in), &vs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if vs[0].ID.String() != vs[1].ID.String() {
		t.Fatalf("numeric and string ids should compare equal: %q %q", vs[0].ID, vs[1].ID)
	}

	out, err := json.Marshal(vs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"id":1,`) || !strings.Contains(string(out), `"id":"1",`) {
		t.Fatalf("id form not preserved: %s", out)
	}
}

func TestVideoID_IntegralNumbersNormalise(t *testing.T) {
	cases := map[string]string{
		`2`:    "2",
		`2.0`:  "2",
		`1e2`:  "100",
		`1.5`:  "1.5",
	}
	for in, want := range cases {
		var id VideoID
		if err := json.Unmarshal([]byte(in), &id); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if id.String() != want {
			t.Fatalf("%s: text=%q want %q", in, id, want)
		}
		out, err := json.Marshal(id)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(out) != want {
			t.Fatalf("%s: encoded %s want %s", in, out, want)
		}
	}

	ds, err := DecodeDataset(strings.NewReader(`{"categories":["c"],"videos":[{"id":2.0,"title":"A","category":"c","duration":1}]}`))
	if err != nil {
		t.Fatalf("DecodeDataset: %v", err)
	}
	cat, err := FromDataset(ds)
	if err != nil {
		t.Fatalf("FromDataset: %v", err)
	}
	if _, err := cat.GetVideo("2"); err != nil {
		t.Fatalf("GetVideo(2): %v", err)
	}
}

func TestVideoIDFromText(t *testing.T) {
	id, err := videoIDFromText("1", true)
	if err != nil {
		t.Fatalf("numeric: %v", err)
	}
	if out, _ := json.Marshal(id); string(out) != `1` {
		t.Fatalf("numeric id encoded as %s", out)
	}

	id, err = videoIDFromText("1", false)
	if err != nil {
		t.Fatalf("string: %v", err)
	}
	if out, _ := json.Marshal(id); string(out) != `"1"` {
		t.Fatalf("string id encoded as %s", out)
	}

	if _, err := videoIDFromText("abc", true); err == nil {
		t.Fatal("expected error for non-numeric text flagged numeric")
	}
}
