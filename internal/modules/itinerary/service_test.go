package itinerary

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wanderplan/internal/ai"
	"wanderplan/internal/modules/genlog"
	"wanderplan/internal/platform/requestid"
)

type stubGenerator struct {
	text   string
	err    error
	delay  time.Duration
	prompt string
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", &ai.TransportError{Err: ctx.Err()}
		}
	}
	return s.text, s.err
}

type memoryRecorder struct {
	mu     sync.Mutex
	events []genlog.Event
}

func (m *memoryRecorder) Record(_ context.Context, ev genlog.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

type stubResolver struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *stubResolver) Resolve(_ context.Context, place, near string) (float64, float64, error) {
	s.mu.Lock()
	s.calls = append(s.calls, place+"|"+near)
	s.mu.Unlock()
	if s.err != nil {
		return 0, 0, s.err
	}
	return 15.5009, 73.9116, nil
}

func TestGenerateReturnsTextVerbatim(t *testing.T) {
	gen := &stubGenerator{text: "  Day 1: Louvre...\n"}
	rec := &memoryRecorder{}
	svc := NewService(ServiceDeps{Generator: gen, Recorder: rec}, Options{Model: "gemini-2.5-flash-lite"})

	ctx := requestid.WithID(context.Background(), "req-42")
	res, err := svc.Generate(ctx, parisRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Itinerary != "  Day 1: Louvre...\n" {
		t.Errorf("itinerary was modified: %q", res.Itinerary)
	}
	if res.Locations != nil {
		t.Errorf("unexpected locations %+v", res.Locations)
	}
	if gen.prompt != BuildPrompt(StyleBrief, parisRequest()) {
		t.Errorf("service should default to the brief prompt")
	}

	if len(rec.events) != 1 {
		t.Fatalf("expected one event, got %d", len(rec.events))
	}
	ev := rec.events[0]
	if ev.RequestID != "req-42" || ev.Outcome != ai.OutcomeOK || ev.Model != "gemini-2.5-flash-lite" || ev.PromptStyle != "brief" {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestGenerateWrapsUpstreamErrors(t *testing.T) {
	upstream := &ai.UpstreamError{Status: 503, Body: "unavailable"}
	rec := &memoryRecorder{}
	svc := NewService(ServiceDeps{Generator: &stubGenerator{err: upstream}, Recorder: rec}, Options{})

	res, err := svc.Generate(context.Background(), parisRequest())
	if res != nil {
		t.Fatalf("expected no result, got %+v", res)
	}
	var got *ai.UpstreamError
	if !errors.As(err, &got) || got.Status != 503 {
		t.Fatalf("expected wrapped UpstreamError, got %v", err)
	}
	if len(rec.events) != 1 || rec.events[0].Outcome != ai.OutcomeUpstreamStatus || rec.events[0].UpstreamStatus != 503 {
		t.Errorf("unexpected events %+v", rec.events)
	}
}

func TestGenerateAppliesTimeout(t *testing.T) {
	gen := &stubGenerator{text: "late", delay: time.Second}
	svc := NewService(ServiceDeps{Generator: gen}, Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := svc.Generate(context.Background(), parisRequest())
	if ai.Outcome(err) != ai.OutcomeTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("timeout not applied")
	}
}

func TestGenerateGeocodesOnlyCoordinateLessPlaces(t *testing.T) {
	gen := &stubGenerator{text: structuredReply}
	resolver := &stubResolver{}
	svc := NewService(ServiceDeps{Generator: gen, Resolver: resolver}, Options{Style: StyleStructured})

	req := parisRequest()
	req.Location = Value(`"Goa"`)
	res, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(resolver.calls) != 2 {
		t.Fatalf("expected 2 lookups, got %v", resolver.calls)
	}
	if len(res.Locations) != 3 {
		t.Fatalf("expected 3 locations, got %+v", res.Locations)
	}
	if res.Locations[0].Source != SourceModel || res.Locations[0].Place != "Baga Beach" {
		t.Errorf("unexpected first location %+v", res.Locations[0])
	}
	basilica := res.Locations[1]
	if basilica.Place != "Basilica of Bom Jesus" || basilica.Source != SourceGeocoder || basilica.Lat != 15.5009 {
		t.Errorf("unexpected geocoded location %+v", basilica)
	}
	for _, call := range resolver.calls {
		if call != "Basilica of Bom Jesus|Goa" && call != "Fort Aguada|Goa" {
			t.Errorf("unexpected lookup %q", call)
		}
	}
}

func TestGenerateDropsFailedLookups(t *testing.T) {
	gen := &stubGenerator{text: structuredReply}
	svc := NewService(ServiceDeps{Generator: gen, Resolver: &stubResolver{err: errors.New("no results")}}, Options{Style: StyleStructured})

	res, err := svc.Generate(context.Background(), parisRequest())
	if err != nil {
		t.Fatalf("geocoding failures must not fail the request: %v", err)
	}
	if len(res.Locations) != 1 || res.Locations[0].Place != "Baga Beach" {
		t.Errorf("unexpected locations %+v", res.Locations)
	}
}

// blockingResolver never answers on its own; it returns once ctx ends
// or, when ignoreCtx is set, once release is closed.
type blockingResolver struct {
	ignoreCtx bool
	release   chan struct{}
}

func (b *blockingResolver) Resolve(ctx context.Context, _, _ string) (float64, float64, error) {
	if b.ignoreCtx {
		<-b.release
		return 0, 0, errors.New("released")
	}
	<-ctx.Done()
	return 0, 0, ctx.Err()
}

func TestGenerateBoundsGeocoding(t *testing.T) {
	for _, ignoreCtx := range []bool{false, true} {
		resolver := &blockingResolver{ignoreCtx: ignoreCtx, release: make(chan struct{})}
		svc := NewService(
			ServiceDeps{Generator: &stubGenerator{text: structuredReply}, Resolver: resolver},
			Options{Style: StyleStructured, Timeout: 50 * time.Millisecond},
		)

		type outcome struct {
			res *Result
			err error
		}
		ch := make(chan outcome, 1)
		go func() {
			res, err := svc.Generate(context.Background(), parisRequest())
			ch <- outcome{res, err}
		}()

		select {
		case got := <-ch:
			if got.err != nil {
				t.Fatalf("ignoreCtx=%v: geocoding timeout must not fail the request: %v", ignoreCtx, got.err)
			}
			if got.res.Itinerary != structuredReply {
				t.Errorf("ignoreCtx=%v: itinerary text was modified", ignoreCtx)
			}
			if len(got.res.Locations) != 1 || got.res.Locations[0].Place != "Baga Beach" {
				t.Errorf("ignoreCtx=%v: expected only model coordinates, got %+v", ignoreCtx, got.res.Locations)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("ignoreCtx=%v: Generate still blocked on geocoding", ignoreCtx)
		}
		close(resolver.release)
	}
}

func TestNewServiceGeocodeTimeoutDefaults(t *testing.T) {
	if got := NewService(ServiceDeps{}, Options{Timeout: time.Minute}).opts.GeocodeTimeout; got != time.Minute {
		t.Errorf("expected fallback to upstream timeout, got %v", got)
	}
	if got := NewService(ServiceDeps{}, Options{}).opts.GeocodeTimeout; got != defaultGeocodeTimeout {
		t.Errorf("expected default geocode timeout, got %v", got)
	}
	if got := NewService(ServiceDeps{}, Options{Timeout: time.Minute, GeocodeTimeout: time.Second}).opts.GeocodeTimeout; got != time.Second {
		t.Errorf("explicit geocode timeout overridden: %v", got)
	}
}
