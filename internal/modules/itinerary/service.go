// README: Itinerary service: prompt -> upstream generation -> result, with optional geocoding and event log.
package itinerary

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"wanderplan/internal/ai"
	"wanderplan/internal/modules/genlog"
	"wanderplan/internal/platform/logger"
	"wanderplan/internal/platform/requestid"
)

const (
	// geocodeConcurrency bounds in-flight geocoding lookups per request.
	geocodeConcurrency = 4
	// defaultGeocodeTimeout bounds enrichment when Options sets neither timeout.
	defaultGeocodeTimeout = 10 * time.Second
)

// PlaceResolver looks up coordinates for a place name near a location.
type PlaceResolver interface {
	Resolve(ctx context.Context, place, near string) (lat, lng float64, err error)
}

type Options struct {
	Style Style
	// Model is recorded on generation events only.
	Model string
	// Timeout bounds the upstream call. Zero means no bound beyond the caller's context.
	Timeout time.Duration
	// GeocodeTimeout bounds the whole enrichment step. Zero falls back to Timeout,
	// then to defaultGeocodeTimeout. Lookups still running at the deadline are dropped.
	GeocodeTimeout time.Duration
}

type ServiceDeps struct {
	Generator ai.TextGenerator
	// Resolver is optional; without it only model-supplied coordinates are returned.
	Resolver PlaceResolver
	// Recorder is optional; nil disables the generation log.
	Recorder genlog.Recorder
	Logger   *logger.Logger
}

type Service struct {
	generator ai.TextGenerator
	resolver  PlaceResolver
	recorder  genlog.Recorder
	opts      Options
	log       *logger.Logger
}

func NewService(deps ServiceDeps, opts Options) *Service {
	if opts.Style == "" {
		opts.Style = StyleBrief
	}
	if opts.GeocodeTimeout <= 0 {
		opts.GeocodeTimeout = opts.Timeout
	}
	if opts.GeocodeTimeout <= 0 {
		opts.GeocodeTimeout = defaultGeocodeTimeout
	}
	recorder := deps.Recorder
	if recorder == nil {
		recorder = genlog.Nop{}
	}
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		generator: deps.Generator,
		resolver:  deps.Resolver,
		recorder:  recorder,
		opts:      opts,
		log:       log,
	}
}

// Generate builds the prompt for req, calls the upstream once and returns its text.
// Errors wrap the ai package error types; nothing is retried.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	prompt := BuildPrompt(s.opts.Style, req)

	callCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.generator.GenerateText(callCtx, prompt)
	s.record(ctx, start, err)
	if err != nil {
		s.log.Error("itinerary generation failed",
			"request_id", requestid.FromContext(ctx),
			"outcome", ai.Outcome(err),
			"error", err,
		)
		return nil, fmt.Errorf("generate itinerary: %w", err)
	}

	return &Result{
		Itinerary: text,
		Locations: s.locate(ctx, text, req.Location.String()),
	}, nil
}

func (s *Service) record(ctx context.Context, start time.Time, err error) {
	ev := genlog.NewEvent(requestid.FromContext(ctx), s.opts.Model, string(s.opts.Style))
	ev.Outcome = ai.Outcome(err)
	ev.UpstreamStatus = ai.UpstreamStatus(err)
	ev.LatencyMs = time.Since(start).Milliseconds()
	if recErr := s.recorder.Record(ctx, ev); recErr != nil {
		s.log.Warn("generation event not recorded", "request_id", ev.RequestID, "error", recErr)
	}
}

// locate returns the map locations found in text. Places without usable
// coordinates are geocoded when a resolver is configured; lookup failures drop the place.
func (s *Service) locate(ctx context.Context, text, near string) []MapLocation {
	blocks := parseLocationBlocks(text)
	if len(blocks) == 0 {
		return nil
	}

	lctx, cancel := context.WithTimeout(ctx, s.opts.GeocodeTimeout)
	defer cancel()

	var mu sync.Mutex
	found := make([]*MapLocation, len(blocks))
	var pending []int
	for i, b := range blocks {
		switch {
		case b.complete():
			found[i] = &MapLocation{Day: b.Day, Place: b.Place, Lat: *b.Lat, Lng: *b.Lng, Source: SourceModel}
		case s.resolver != nil:
			pending = append(pending, i)
		}
	}

	// Dispatch runs in the background as well: with every slot held by a stuck
	// lookup, g.Go blocks, and a resolver that ignores its context must not
	// hold the response past the deadline.
	done := make(chan struct{})
	go func() {
		defer close(done)
		g, gctx := errgroup.WithContext(lctx)
		g.SetLimit(geocodeConcurrency)
		for _, i := range pending {
			i := i
			if gctx.Err() != nil {
				break
			}
			b := blocks[i]
			g.Go(func() error {
				lat, lng, err := s.resolver.Resolve(gctx, b.Place, near)
				if err != nil {
					s.log.Warn("geocoding failed", "place", b.Place, "error", err)
					return nil
				}
				mu.Lock()
				found[i] = &MapLocation{Day: b.Day, Place: b.Place, Lat: lat, Lng: lng, Source: SourceGeocoder}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}()
	select {
	case <-done:
	case <-lctx.Done():
		s.log.Warn("geocoding deadline reached; returning partial locations", "timeout", s.opts.GeocodeTimeout)
	}

	mu.Lock()
	defer mu.Unlock()
	var out []MapLocation
	for _, loc := range found {
		if loc != nil {
			out = append(out, *loc)
		}
	}
	return out
}
