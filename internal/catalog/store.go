package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

var (
	// ErrLoad wraps every failure to produce a catalog at startup.
	ErrLoad = errors.New("catalog load failed")
	// ErrNotFound is the only error a query can return.
	ErrNotFound = errors.New("video not found")
)

// VideoID is a video identifier that may be written as a JSON string or
// number. It compares by its textual form and re-encodes in its original form.
type VideoID struct {
	text    string
	numeric bool
}

func NewVideoID(s string) VideoID { return VideoID{text: s} }

func NumericVideoID(n int64) VideoID {
	return VideoID{text: strconv.FormatInt(n, 10), numeric: true}
}

func (id VideoID) String() string { return id.text }

func (id VideoID) IsZero() bool { return id.text == "" }

func (id VideoID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.text), nil
	}
	return json.Marshal(id.text)
}

func (id *VideoID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return errors.New("video id is null")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NewVideoID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("video id must be a string or number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = NumericVideoID(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) {
		return fmt.Errorf("video id %s is not a finite number", n)
	}
	// 2.0 and 1e2 are the same ids as 2 and 100.
	*id = VideoID{text: strconv.FormatFloat(f, 'f', -1, 64), numeric: true}
	return nil
}

// videoIDFromText rebuilds an id from its stored text and form.
func videoIDFromText(text string, numeric bool) (VideoID, error) {
	if !numeric {
		return NewVideoID(text), nil
	}
	var id VideoID
	if err := id.UnmarshalJSON([]byte(text)); err != nil {
		return VideoID{}, err
	}
	return id, nil
}

type Video struct {
	ID              VideoID `json:"id" validate:"required"`
	Title           string  `json:"title" validate:"required"`
	Category        string  `json:"category"`
	DurationMinutes float64 `json:"duration" validate:"gte=0"`
	ThumbnailURL    string  `json:"thumbnailUrl"`
	Description     string  `json:"description"`
}

// Dataset is the on-disk shape of the catalog.
type Dataset struct {
	Categories []string `json:"categories" validate:"unique,dive,required"`
	Videos     []Video  `json:"videos" validate:"dive"`
}

// Source produces the dataset once at startup.
type Source interface {
	Name() string
	Dataset(ctx context.Context) (Dataset, error)
}
