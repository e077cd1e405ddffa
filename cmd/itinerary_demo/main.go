// README: One-shot itinerary generation from the command line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"wanderplan/internal/ai"
	"wanderplan/internal/config"
	"wanderplan/internal/modules/itinerary"
	"wanderplan/internal/platform/logger"
)

func main() {
	location := flag.String("location", "Goa", "destination")
	budget := flag.String("budget", "15000", "total budget")
	days := flag.Int("days", 3, "number of days")
	interests := flag.String("interests", "beaches,food", "comma-separated interests")
	groupSize := flag.Int("group-size", 2, "number of travellers")
	style := flag.String("style", "", "prompt style (brief or structured); defaults to PROMPT_STYLE")
	raw := flag.Bool("raw", false, "print the itinerary without stripping the map section")
	flag.Parse()

	log, _ := logger.New("development")
	if log == nil {
		log = logger.Nop()
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed", "error", err)
	}
	if *style == "" {
		*style = cfg.AI.PromptStyle
	}
	promptStyle, err := itinerary.ParseStyle(*style)
	if err != nil {
		log.Fatal("invalid prompt style", "error", err)
	}

	ctx := context.Background()
	var gen ai.TextGenerator
	gcfg := ai.GeminiConfig{APIKey: cfg.AI.GeminiKey, Model: cfg.AI.Model, BaseURL: cfg.AI.BaseURL}
	if cfg.AI.Transport == config.TransportSDK {
		provider, err := ai.NewGeminiProvider(ctx, gcfg, log)
		if err != nil {
			log.Fatal("failed to initialize AI provider", "error", err)
		}
		defer provider.Close()
		gen = provider
	} else {
		client, err := ai.NewGeminiClient(gcfg, &http.Client{}, log)
		if err != nil {
			log.Fatal("failed to initialize AI client", "error", err)
		}
		gen = client
	}

	req := itinerary.Request{
		Location:  jsonValue(*location),
		Budget:    jsonValue(*budget),
		Days:      jsonValue(*days),
		Interests: jsonValue(splitList(*interests)),
		GroupSize: jsonValue(*groupSize),
	}

	svc := itinerary.NewService(itinerary.ServiceDeps{Generator: gen, Logger: log}, itinerary.Options{
		Style:   promptStyle,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	})
	res, err := svc.Generate(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed (%s): %v\n", ai.Outcome(err), err)
		os.Exit(1)
	}

	if *raw {
		fmt.Println(res.Itinerary)
	} else {
		fmt.Println(itinerary.StripLocations(res.Itinerary))
	}
	if len(res.Locations) > 0 {
		fmt.Println("\nMap locations:")
		for _, loc := range res.Locations {
			fmt.Printf("  Day %d: %s (%.5f, %.5f)\n", loc.Day, loc.Place, loc.Lat, loc.Lng)
		}
	}
}

func jsonValue(v any) itinerary.Value {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return itinerary.Value(b)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
