// README: Smoke cases: public routes, error contract, optional live generation, DB and Redis reachability.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 90 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency.Round(time.Millisecond))
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

const sampleRequest = `{"location":"Paris","budget":"500 USD","days":3,"interests":["museums","food"],"groupSize":2}`

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{
			Name: "HTTP: GET / status line",
			Run: func(ctx context.Context, r *Runner) Result {
				status, body, latency, err := r.do(ctx, http.MethodGet, "/", "", nil)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				if status != http.StatusOK || !strings.HasPrefix(body, "Backend running") {
					return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d body=%q", status, body)}
				}
				return Result{Status: StatusPass, Latency: latency}
			},
		},
		{
			Name: "HTTP: request id header",
			Run: func(ctx context.Context, r *Runner) Result {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+"/", nil)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				req.Header.Set("X-Request-ID", "smoke-check")
				resp, err := r.httpc.Do(req)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				defer resp.Body.Close()
				if got := resp.Header.Get("X-Request-ID"); got != "smoke-check" {
					return Result{Status: StatusFail, Note: fmt.Sprintf("echoed %q", got)}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name: "HTTP: CORS preflight",
			Run: func(ctx context.Context, r *Runner) Result {
				headers := map[string]string{
					"Origin":                        "http://localhost:5173",
					"Access-Control-Request-Method": http.MethodPost,
				}
				status, _, latency, err := r.do(ctx, http.MethodOptions, "/generate-itinerary", "", headers)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				if status != http.StatusNoContent {
					return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: StatusPass, Latency: latency}
			},
		},
		{
			Name: "HTTP: invalid JSON rejected",
			Run: func(ctx context.Context, r *Runner) Result {
				status, body, latency, err := r.do(ctx, http.MethodPost, "/generate-itinerary", `{"location":`, jsonHeaders)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				if status != http.StatusBadRequest {
					return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d body=%q", status, body)}
				}
				return Result{Status: StatusPass, Latency: latency}
			},
		},
		{
			Name: "Live: generate itinerary",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.Live {
					return Result{Status: StatusSkip, Note: "set -live to call Gemini"}
				}
				return r.generateOnce(ctx)
			},
		},
		{
			Name: "Live: concurrent generations",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.Live {
					return Result{Status: StatusSkip, Note: "set -live to call Gemini"}
				}
				start := time.Now()
				results := make([]Result, r.cfg.Concurrency)
				g, gctx := errgroup.WithContext(ctx)
				for i := range results {
					i := i
					g.Go(func() error {
						results[i] = r.generateOnce(gctx)
						return nil
					})
				}
				_ = g.Wait()
				failed := 0
				for _, res := range results {
					if res.Status != StatusPass {
						failed++
					}
				}
				if failed > 0 {
					return Result{Status: StatusFail, Latency: time.Since(start), Note: fmt.Sprintf("%d/%d failed", failed, len(results))}
				}
				return Result{Status: StatusPass, Latency: time.Since(start), Note: fmt.Sprintf("%d requests", len(results))}
			},
		},
		{
			Name: "Env: Postgres generation log",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				var n int
				if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM generation_events").Scan(&n); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass, Note: fmt.Sprintf("%d events", n)}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
	}
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func (r *Runner) generateOnce(ctx context.Context) Result {
	status, body, latency, err := r.do(ctx, http.MethodPost, "/generate-itinerary", sampleRequest, jsonHeaders)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	var out struct {
		Itinerary string `json:"itinerary"`
		Error     string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return Result{Status: StatusFail, Latency: latency, Note: "invalid json body"}
	}
	if status != http.StatusOK || out.Itinerary == "" {
		return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d error=%q", status, out.Error)}
	}
	return Result{Status: StatusPass, Latency: latency}
}

func (r *Runner) do(ctx context.Context, method, path, body string, headers map[string]string) (int, string, time.Duration, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, reader)
	if err != nil {
		return 0, "", 0, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	latency := time.Since(start)
	if err != nil {
		return 0, "", latency, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", latency, err
	}
	return resp.StatusCode, string(raw), latency, nil
}
