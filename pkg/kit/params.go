package kit

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// URLParam returns the percent-decoded route parameter. chi matches on the
// raw path when one is present, so escaped slashes arrive still encoded.
func URLParam(r *http.Request, name string) (string, bool) {
	v, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil {
		return "", false
	}
	return v, true
}
