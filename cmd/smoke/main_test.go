package main

import "testing"

func TestNormalizeConfigClampsConcurrency(t *testing.T) {
	for in, want := range map[int]int{-5: 1, 0: 1, 1: 1, 8: 8} {
		if got := normalizeConfig(Config{Concurrency: in}).Concurrency; got != want {
			t.Errorf("Concurrency %d -> %d, want %d", in, got, want)
		}
	}
}

func TestNormalizeConfigTrimsBaseURL(t *testing.T) {
	if got := normalizeConfig(Config{BaseURL: "http://localhost:5000/", Concurrency: 1}).BaseURL; got != "http://localhost:5000" {
		t.Errorf("unexpected base url %q", got)
	}
}
