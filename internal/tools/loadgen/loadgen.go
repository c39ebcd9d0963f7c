// Package loadgen drives synthetic traffic against a running instance so
// rate limits, the negative lookup cache, and download metrics can be
// observed under load.
package loadgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type Config struct {
	// BaseURL is the root of the target instance, e.g. http://localhost:8080.
	BaseURL string
	// PublicIDs are share links to request. When empty the generator invents
	// random ids, which exercises the not-found path and the negative cache.
	PublicIDs []string
	// Profile selects the request mix: "share", "health" or "mixed".
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
}

type Result struct {
	Total    int
	ByClass  map[string]int
	Errors   int
	Duration time.Duration
}

func classifyStatusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return "other"
	}
}

func normalizeProfile(profile string) string {
	profile = strings.ToLower(strings.TrimSpace(profile))
	switch profile {
	case "share", "health", "mixed":
		return profile
	default:
		return "mixed"
	}
}

// Run fires requests at the configured rate until the duration elapses or ctx
// is canceled. Transport failures count as errors; HTTP responses of any
// status are tallied by class.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	profile := normalizeProfile(cfg.Profile)
	base := strings.TrimRight(cfg.BaseURL, "/")

	rng := rand.New(rand.NewSource(cfg.Seed))
	var rngMu sync.Mutex
	nextTarget := func() string {
		rngMu.Lock()
		defer rngMu.Unlock()
		kind := profile
		if kind == "mixed" {
			if rng.Intn(4) == 0 {
				kind = "health"
			} else {
				kind = "share"
			}
		}
		if kind == "health" {
			return base + "/health/live"
		}
		if len(cfg.PublicIDs) > 0 {
			return base + "/s/" + cfg.PublicIDs[rng.Intn(len(cfg.PublicIDs))]
		}
		return fmt.Sprintf("%s/s/synthetic-%08x", base, rng.Int63())
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	client := &http.Client{
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			// Presigned URLs point at external storage; counting the 302 is
			// enough.
			return http.ErrUseLastResponse
		},
	}

	result := &Result{ByClass: map[string]int{}}
	var resultMu sync.Mutex
	record := func(status int, failed bool) {
		resultMu.Lock()
		defer resultMu.Unlock()
		result.Total++
		if failed {
			result.Errors++
			return
		}
		result.ByClass[classifyStatusClass(status)]++
	}

	ticks := make(chan struct{})
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(ticks)
		ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				select {
				case ticks <- struct{}{}:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	for i := 0; i < cfg.Concurrency; i++ {
		g.Go(func() error {
			for range ticks {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, nextTarget(), nil)
				if err != nil {
					record(0, true)
					continue
				}
				resp, err := client.Do(req)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					record(0, true)
					continue
				}
				resp.Body.Close()
				record(resp.StatusCode, false)
			}
			return nil
		})
	}

	started := time.Now()
	err := g.Wait()
	result.Duration = time.Since(started)
	return result, err
}
