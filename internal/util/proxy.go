package util

import (
	"net/http"
	"net/url"

	"github.com/ppiankov/docketscan/internal/model"
)

// NewHTTPClient builds the plain HTTP client used outside the browser,
// routed through the configured proxies
func NewHTTPClient(cfg model.HTTPConfig) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy)
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}

// NewProxyFunc picks the proxy for a request by scheme.
// With no proxy URLs configured it falls back to environment variables.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
