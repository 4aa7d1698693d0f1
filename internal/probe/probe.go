// Package probe checks a running server from the outside.
package probe

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Result is the outcome of one GET against the server.
type Result struct {
	Path        string        `json:"path"`
	Status      int           `json:"status"`
	ContentType string        `json:"content_type"`
	Bytes       int           `json:"bytes"`
	Latency     time.Duration `json:"latency"`
	Err         error         `json:"-"`
}

type Prober struct {
	client *resty.Client
}

func NewProber(baseURL string, timeout time.Duration) *Prober {
	return &Prober{
		client: resty.New().
			SetBaseURL(strings.TrimSuffix(baseURL, "/")).
			SetTimeout(timeout).
			SetRetryCount(2).
			SetRetryWaitTime(500 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second),
	}
}

// Check issues a GET for path. Transport failures are reported in
// Result.Err; any HTTP status is a successful check at this level.
func (p *Prober) Check(ctx context.Context, path string) Result {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	start := time.Now()
	resp, err := p.client.R().
		SetContext(ctx).
		Get(path)

	res := Result{
		Path:    path,
		Latency: time.Since(start),
	}
	if err != nil {
		res.Err = fmt.Errorf("failed to fetch %s: %w", path, err)
		return res
	}

	res.Status = resp.StatusCode()
	res.ContentType = resp.Header().Get("Content-Type")
	res.Bytes = len(resp.Body())
	return res
}

// CheckAll checks every path concurrently. Results keep the order of paths.
func (p *Prober) CheckAll(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			results[i] = p.Check(ctx, path)
		}(i, path)
	}
	wg.Wait()

	return results
}

// Failed returns the results that errored or did not answer with expect.
func Failed(results []Result, expect int) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil || r.Status != expect {
			failed = append(failed, r)
		}
	}
	return failed
}
