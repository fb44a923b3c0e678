package mediawiki

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"

	"github.com/valksor/go-patrol/internal/config"
	"github.com/valksor/go-patrol/internal/log"
)

const maxRetries = 3

// Client executes queries against a site's api.php endpoint.
// It implements Issuer.
type Client struct {
	site    config.SiteConfig
	http    *retryablehttp.Client
	session *Session
}

// NewClient creates a client for a site. A non-empty token enables an
// authenticated session using an OAuth bearer transport.
func NewClient(site config.SiteConfig, token string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = maxRetries
	rc.Logger = nil

	base := cleanhttp.DefaultPooledTransport()
	var transport http.RoundTripper = base
	if token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   base,
		}
	}
	rc.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   site.WriteTimeout,
	}

	return &Client{
		site:    site,
		http:    rc,
		session: NewSession(token != ""),
	}
}

// Session returns the client's authentication state
func (c *Client) Session() *Session {
	return c.session
}

// Issue starts executing a request and returns the live query.
// The query completes asynchronously; poll IsProcessed.
func (c *Client) Issue(ctx context.Context, req Request) *Query {
	q := NewQuery(req)
	qctx, cancel := context.WithCancel(ctx)
	q.markProcessing(cancel)

	go c.execute(qctx, q)
	return q
}

func (c *Client) execute(ctx context.Context, q *Query) {
	req := q.Request()

	vals := url.Values{}
	vals.Set("action", string(req.Action))
	vals.Set("format", "xml")
	for k, v := range req.Params {
		vals.Set(k, v)
	}

	var (
		httpReq *retryablehttp.Request
		err     error
	)
	if req.POST {
		httpReq, err = retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.site.APIURL, strings.NewReader(vals.Encode()))
		if err == nil {
			httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		httpReq, err = retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.site.APIURL+"?"+vals.Encode(), nil)
	}
	if err != nil {
		q.Fail(fmt.Sprintf("build request: %v", err))
		return
	}

	log.Debug("issuing api request", "action", req.Action, "target", req.Target, "post", req.POST)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		q.Fail(fmt.Sprintf("request failed: %v", err))
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		q.Fail(fmt.Sprintf("read response: %v", err))
		return
	}
	if resp.StatusCode >= http.StatusBadRequest {
		q.Fail(fmt.Sprintf("HTTP %d from %s", resp.StatusCode, c.site.Name))
		return
	}

	res, err := ParseResult(body)
	if err != nil {
		q.Fail(fmt.Sprintf("malformed response: %v", err))
		return
	}

	q.Complete(res)
}
