// Package httpx builds the outbound HTTP clients shared by the data
// fetchers and notifiers.
package httpx

import (
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout applies to every outbound request unless overridden.
const DefaultTimeout = 30 * time.Second

// NewClient returns a client with the given timeout that routes through
// proxyURL when set. An unparsable proxy is logged and ignored.
func NewClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			log.Warn().Err(err).Str("proxy", proxyURL).Msg("invalid proxy url, connecting directly")
		} else {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
