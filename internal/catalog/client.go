package catalog

import (
	"crypto/tls"
	"net/http"
	"time"
)

// DefaultUserAgent is a common desktop browser string. The catalog blocks
// clients that identify as automated.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// NewHTTPClient builds the client used for all catalog requests.
//
// Certificate verification is disabled because the catalog host serves a
// known-broken certificate chain. This is an operational accommodation for
// that one target, not a pattern to generalize.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
}
