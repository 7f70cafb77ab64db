// Package harvest implements the concurrent, resumable page-harvesting
// pipeline over the remote dictionary site.
package harvest

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/config"
)

// Client issues GET requests through two Colly collectors sharing the same
// connection limits: a short-timeout one for existence probes and a longer
// one for content fetches.
type Client struct {
	verify *colly.Collector
	fetch  *colly.Collector
}

// NewClient builds a Client from the harvest configuration.
func NewClient(cfg config.HarvestConfig) (*Client, error) {
	verify, err := newCollector(cfg, cfg.VerifyTimeout)
	if err != nil {
		return nil, err
	}
	fetch, err := newCollector(cfg, cfg.FetchTimeout)
	if err != nil {
		return nil, err
	}
	return &Client{verify: verify, fetch: fetch}, nil
}

func newCollector(cfg config.HarvestConfig, timeout time.Duration) (*colly.Collector, error) {
	c := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(cfg.UserAgent),
	)
	// The missing-list pass revisits previously probed URLs.
	c.AllowURLRevisit = true
	c.IgnoreRobotsTxt = true
	c.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          cfg.MaxConns,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ForceAttemptHTTP2:     true,
		ResponseHeaderTimeout: timeout,
	})
	c.SetRequestTimeout(timeout)

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.MaxConns,
	}); err != nil {
		return nil, err
	}
	return c, nil
}

// Verify issues a short-timeout probe GET.
func (c *Client) Verify(ctx context.Context, url string) (int, []byte, error) {
	return get(ctx, c.verify, url)
}

// Fetch issues a content GET with the longer timeout.
func (c *Client) Fetch(ctx context.Context, url string) (int, []byte, error) {
	return get(ctx, c.fetch, url)
}

type getResult struct {
	status int
	body   []byte
	err    error
}

func get(ctx context.Context, base *colly.Collector, url string) (int, []byte, error) {
	collector := base.Clone()
	resultCh := make(chan getResult, 1)
	var once sync.Once
	send := func(res getResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		send(getResult{
			status: r.StatusCode,
			body:   append([]byte{}, r.Body...),
		})
	})
	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		send(getResult{status: status, err: err})
	})

	if err := collector.Visit(url); err != nil {
		return 0, nil, err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		return res.status, res.body, res.err
	default:
		return 0, nil, errors.New("fetch produced no result")
	}
}
