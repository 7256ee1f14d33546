package providers

import (
	"cvewatch/internal/structures"
	"net"
	"net/http"
	"time"
)

// NewHttpClientProvider returns the client used for upstream API requests.
func NewHttpClientProvider(conf *structures.Config) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          conf.Api.Concurrency * 2,
		MaxIdleConnsPerHost:   conf.Api.Concurrency * 2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: conf.Api.Timeout,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   conf.Api.Timeout,
	}
}
