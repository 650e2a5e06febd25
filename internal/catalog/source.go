package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

//go:embed data/videos.json
var embeddedDataset []byte

// EmbeddedSource serves the dataset compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (EmbeddedSource) Dataset(_ context.Context) (Dataset, error) {
	return DecodeDataset(bytes.NewReader(embeddedDataset))
}

type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Dataset(_ context.Context) (Dataset, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return Dataset{}, err
	}
	defer f.Close()

	return DecodeDataset(f)
}

// DecodeDataset reads a single JSON dataset object from r.
func DecodeDataset(r io.Reader) (Dataset, error) {
	dec := json.NewDecoder(r)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return Dataset{}, errors.New("decode dataset: extra data after json object")
	}
	return ds, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if id, ok := f.Interface().(VideoID); ok {
			return id.String()
		}
		return nil
	}, VideoID{})
	return v
}

func validateDataset(ds Dataset) error {
	if ds.Categories == nil || ds.Videos == nil {
		return errors.New("dataset must contain categories and videos arrays")
	}
	if err := validate.Struct(ds); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}
