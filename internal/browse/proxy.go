package browse

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"StreamBox/pkg/kit"
)

// NewReverseProxy forwards raw catalog routes. CORS headers from upstream are
// dropped because this service sets its own.
func NewReverseProxy(target string, log *zap.Logger) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(u)
			pr.SetXForwarded()
			if reqID := chimw.GetReqID(pr.In.Context()); reqID != "" {
				pr.Out.Header.Set(chimw.RequestIDHeader, reqID)
			}
		},
		ModifyResponse: func(resp *http.Response) error {
			for k := range resp.Header {
				if strings.HasPrefix(k, "Access-Control-") {
					resp.Header.Del(k)
				}
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			if log != nil {
				log.Warn("proxy upstream error", zap.Error(err), zap.String("path", r.URL.Path))
			}
			kit.WriteError(w, r, http.StatusBadGateway, upstreamMessage, nil)
		},
	}, nil
}
