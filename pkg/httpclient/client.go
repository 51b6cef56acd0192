// Package httpclient provides the shared HTTP plumbing for pipegrant:
// a transport that applies default headers and proxy settings, and a
// retryable client for the paginated read endpoints.
package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"sync/atomic"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
)

// ignoreProxy controls whether the HTTP_PROXY environment variable should be
// ignored. Uses atomic operations for thread-safe access.
var ignoreProxy atomic.Bool

// SetIgnoreProxy sets whether to ignore the HTTP_PROXY environment variable.
func SetIgnoreProxy(ignore bool) {
	ignoreProxy.Store(ignore)
}

// HeaderRoundTripper is an http.RoundTripper that adds default headers to
// requests. Headers are only added if they're not already present.
type HeaderRoundTripper struct {
	Headers map[string]string
	Next    http.RoundTripper
}

func (hrt *HeaderRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if hrt.Next == nil {
		return nil, http.ErrNotSupported
	}

	if hrt.Headers != nil {
		for k, v := range hrt.Headers {
			if req.Header.Get(k) == "" {
				req.Header.Set(k, v)
			}
		}
	}

	return hrt.Next.RoundTrip(req)
}

// NewTransport returns a RoundTripper applying the given default headers and
// the HTTP_PROXY environment variable (unless SetIgnoreProxy(true) was
// called). It is used as the transport of the Azure DevOps API client.
func NewTransport(defaultHeaders map[string]string) http.RoundTripper {
	tr := &http.Transport{}

	if !ignoreProxy.Load() {
		proxyServer, useHTTPProxy := os.LookupEnv("HTTP_PROXY")
		if useHTTPProxy {
			proxyURL, err := url.Parse(proxyServer)
			if err != nil {
				log.Fatal().Err(err).Str("HTTP_PROXY", proxyServer).Msg("Invalid Proxy URL in HTTP_PROXY environment variable")
			}
			log.Info().Str("proxy", proxyURL.String()).Msg("Using HTTP_PROXY")
			tr.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &HeaderRoundTripper{Headers: defaultHeaders, Next: tr}
}

// GetPipegrantHTTPClient creates a retryable HTTP client for the read-only
// Azure DevOps endpoints. It retries 429 and 5xx responses (except 501) and
// applies default headers and proxy configuration via NewTransport.
//
// The permission PATCH never goes through this client: authorization writes
// are issued exactly once.
func GetPipegrantHTTPClient(defaultHeaders map[string]string) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = nil

	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			log.Error().Err(err).Msg("Retrying HTTP request, error occurred")
			return true, nil
		}

		if resp == nil {
			log.Error().Msg("Retrying HTTP request, no response")
			return false, nil
		}

		if resp.StatusCode == 429 || (resp.StatusCode >= 500 && resp.StatusCode != 501) {
			url := ""
			if resp.Request != nil && resp.Request.URL != nil {
				url = resp.Request.URL.String()
			}
			log.Trace().Str("url", url).Int("statusCode", resp.StatusCode).Msg("Retrying HTTP request")
			return true, nil
		}

		return false, nil
	}

	client.HTTPClient.Transport = NewTransport(defaultHeaders)
	return client
}
