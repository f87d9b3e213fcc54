package pagespeed

import (
	"context"
	"time"

	"github.com/guonaihong/gout"
	"go.uber.org/zap"

	"github.com/vitalscope/vitalscope/internal/vitals"
)

// DefaultEndpoint is the PageSpeed Insights v5 runPagespeed API.
const DefaultEndpoint = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// DefaultTimeout bounds one upstream analysis call. PSI runs a full
// lighthouse pass server-side, so this is deliberately generous.
const DefaultTimeout = 60 * time.Second

// Client fetches performance snapshots from the upstream measurement API.
type Client struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
}

// NewClient creates a PSI client. An empty endpoint or zero timeout falls
// back to the defaults.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{endpoint: endpoint, apiKey: apiKey, timeout: timeout}
}

// Fetch runs one analysis for a URL with strategy mobile or desktop and
// returns the decoded snapshot. Transport failures and non-2xx responses
// surface as UpstreamError.
func (c *Client) Fetch(ctx context.Context, url, strategy string) (*vitals.Snapshot, error) {
	if strategy == "" {
		strategy = "mobile"
	}

	var (
		body []byte
		code int
	)
	err := gout.GET(c.endpoint).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetQuery(gout.H{
			"url":      url,
			"strategy": strategy,
			"key":      c.apiKey,
		}).
		Code(&code).
		BindBody(&body).
		Do()
	if err != nil {
		return nil, &vitals.UpstreamError{Err: err}
	}
	if code < 200 || code >= 300 {
		zap.L().Warn("pagespeed upstream returned non-success status",
			zap.String("url", url),
			zap.String("strategy", strategy),
			zap.Int("status", code))
		return nil, &vitals.UpstreamError{Status: code}
	}

	snap, err := vitals.ParseSnapshot(body)
	if err != nil {
		return nil, &vitals.UpstreamError{Err: err}
	}
	return snap, nil
}
