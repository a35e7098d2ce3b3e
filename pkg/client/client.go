// Package client talks to a running viralscope dashboard over its JSON API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/viralscope/viralscope/pkg/covid"
	"github.com/viralscope/viralscope/pkg/whttp"
)

// Client is safe for concurrent use.
type Client struct {
	BaseURL  string
	Username string
	Password string

	http *retryablehttp.Client
}

// Summary is the stats payload for one region.
type Summary struct {
	Region    string
	Name      string
	Stats     covid.StatSnapshot
	Rates     covid.Rates
	UpdatedAt time.Time
	Loading   bool
}

// Countries is a filtered country list. Suggestion is set when the filter
// matched nothing and a close name exists.
type Countries struct {
	Countries  []covid.CountryRecord
	Suggestion string
}

// Ping is the result of fetching the dashboard page.
type Ping struct {
	StatusCode int
	Title      string
	Latency    time.Duration
}

// New returns a client for the dashboard at baseURL.
func New(baseURL string, timeout time.Duration, retries int) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		http:    whttp.NewClient(timeout, retries),
	}
}

// WithAuth sets basic auth credentials for the API.
func (c *Client) WithAuth(username, password string) *Client {
	c.Username, c.Password = username, password
	return c
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (string, error) {
	return c.do(ctx, http.MethodGet, path, q, nil)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte) (string, error) {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		URL:      u,
		Method:   method,
		Body:     body,
		Headers:  []whttp.WHTTPHeader{{Name: "Accept", Value: "application/json"}},
		Username: c.Username,
		Password: c.Password,
	}, c.http)
	if err != nil {
		return "", err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &whttp.StatusError{StatusCode: res.StatusCode, Message: gjson.Get(res.BodyString, "error").Str}
	}
	if !gjson.Valid(res.BodyString) {
		return "", fmt.Errorf("invalid JSON from %s", path)
	}
	return res.BodyString, nil
}

// Stats fetches the summary for region; empty means global.
func (c *Client) Stats(ctx context.Context, region string) (*Summary, error) {
	q := url.Values{}
	if region != "" {
		q.Set("region", region)
	}
	body, err := c.get(ctx, "/api/v1/stats", q)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Region:  gjson.Get(body, "region").Str,
		Name:    gjson.Get(body, "name").Str,
		Stats:   parseSnapshot(gjson.Get(body, "stats")),
		Rates:   parseRates(gjson.Get(body, "rates")),
		Loading: gjson.Get(body, "loading").Bool(),
	}
	if ts := gjson.Get(body, "updated_at"); ts.Exists() {
		s.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts.Str)
	}
	return s, nil
}

// Series fetches a generated series. seed 0 lets the server pick.
func (c *Client) Series(ctx context.Context, region string, days int, seed int64) ([]covid.DailyPoint, error) {
	q := url.Values{}
	if region != "" {
		q.Set("region", region)
	}
	q.Set("days", strconv.Itoa(days))
	if seed != 0 {
		q.Set("seed", strconv.FormatInt(seed, 10))
	}
	body, err := c.get(ctx, "/api/v1/series", q)
	if err != nil {
		return nil, err
	}

	var points []covid.DailyPoint
	var perr error
	gjson.Get(body, "points").ForEach(func(_, v gjson.Result) bool {
		d, err := time.Parse(covid.DateLayout, v.Get("date").Str)
		if err != nil {
			perr = fmt.Errorf("bad date %q: %w", v.Get("date").Str, err)
			return false
		}
		points = append(points, covid.DailyPoint{
			Date:      d,
			Cases:     v.Get("cases").Int(),
			Deaths:    v.Get("deaths").Int(),
			Recovered: v.Get("recovered").Int(),
		})
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return points, nil
}

// Countries fetches the country list filtered by search.
func (c *Client) Countries(ctx context.Context, search string) (*Countries, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	body, err := c.get(ctx, "/api/v1/countries", q)
	if err != nil {
		return nil, err
	}

	out := &Countries{Countries: []covid.CountryRecord{}, Suggestion: gjson.Get(body, "suggestion.name").Str}
	for _, v := range gjson.Get(body, "countries").Array() {
		out.Countries = append(out.Countries, covid.CountryRecord{
			Code:       v.Get("code").Str,
			Name:       v.Get("name").Str,
			Cases:      v.Get("cases").Int(),
			Deaths:     v.Get("deaths").Int(),
			Recovered:  v.Get("recovered").Int(),
			Population: v.Get("population").Int(),
		})
	}
	return out, nil
}

// Refresh asks the server to refetch its data and returns the server's
// message.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/refresh", nil, nil)
	if err != nil {
		return "", err
	}
	return gjson.Get(body, "message").Str, nil
}

// Ping loads the dashboard page and reports its title.
func (c *Client) Ping(ctx context.Context) (*Ping, error) {
	start := time.Now()
	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{URL: c.BaseURL + "/"}, c.http)
	if err != nil {
		return nil, err
	}
	return &Ping{StatusCode: res.StatusCode, Title: res.HTTPTitle, Latency: time.Since(start)}, nil
}

func parseSnapshot(v gjson.Result) covid.StatSnapshot {
	return covid.StatSnapshot{
		TotalCases:     v.Get("total_cases").Int(),
		TotalDeaths:    v.Get("total_deaths").Int(),
		TotalRecovered: v.Get("total_recovered").Int(),
		ActiveCases:    v.Get("active_cases").Int(),
	}
}

func parseRates(v gjson.Result) covid.Rates {
	return covid.Rates{
		CasesPer100k:  parseMetric(v.Get("cases_per_100k")),
		MortalityRate: parseMetric(v.Get("mortality_rate")),
		RecoveryRate:  parseMetric(v.Get("recovery_rate")),
	}
}

func parseMetric(v gjson.Result) covid.Metric {
	if v.Type != gjson.Number {
		return covid.Metric{}
	}
	return covid.Metric{Value: v.Float(), OK: true}
}
