// Package http builds the HTTP clients shared by the provider backends.
package http

import (
	"crypto/tls"
	"net/http"
	"time"
)

// DefaultTimeout bounds provider calls whose configuration does not set
// an explicit timeout. Generation requests routinely take tens of
// seconds, so the bound is generous.
const DefaultTimeout = 120 * time.Second

// Options configures HTTP client creation.
type Options struct {
	// Timeout is the whole-request timeout. Zero selects DefaultTimeout.
	Timeout time.Duration
	// SkipSSLVerify disables certificate verification for self-hosted
	// gateways with private certificates.
	SkipSSLVerify bool
}

// NewClient creates an HTTP client with the specified options.
func NewClient(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	client := &http.Client{Timeout: timeout}

	// Only configure a custom transport when verification is skipped.
	if opts.SkipSSLVerify {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}

	return client
}
