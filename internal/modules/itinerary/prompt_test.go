package itinerary

import (
	"strings"
	"testing"
)

func parisRequest() Request {
	return Request{
		Location:  Value(`"Paris"`),
		Budget:    Value(`"500 USD"`),
		Days:      Value(`3`),
		Interests: Value(`["museums","food"]`),
		GroupSize: Value(`2`),
	}
}

func TestBuildPromptBrief(t *testing.T) {
	got := BuildPrompt(StyleBrief, parisRequest())
	want := "\nCreate a 3-day student travel itinerary.\n" +
		"Location: Paris\n" +
		"Budget: 500 USD\n" +
		"Group size: 2\n" +
		"Interests: museums,food\n" +
		"\nInclude:\n- Day-wise plan\n- Budget food & stay\n- Cost breakdown\n"
	if got != want {
		t.Errorf("unexpected brief prompt:\n%q\nwant:\n%q", got, want)
	}
}

func TestBuildPromptStructured(t *testing.T) {
	got := BuildPrompt(StyleStructured, parisRequest())
	for _, want := range []string{
		"Location: Paris\n",
		"Total Budget (INR): 500 USD\n",
		"Number of Days: 3\n",
		"Group Size: 2\n",
		"Interests: museums,food\n",
		"MAP LOCATIONS (COORDINATES)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("structured prompt missing %q", want)
		}
	}
}

func TestBuildPromptMissingFields(t *testing.T) {
	for _, style := range []Style{StyleBrief, StyleStructured} {
		got := BuildPrompt(style, Request{})
		if strings.Contains(got, "undefined") || strings.Contains(got, "%!") {
			t.Errorf("%s: unexpected placeholder in %q", style, got)
		}
		if n := strings.Count(got, NotSpecified); n != 5 {
			t.Errorf("%s: expected 5 %q placeholders, got %d", style, NotSpecified, n)
		}
	}
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	req := parisRequest()
	for _, style := range []Style{StyleBrief, StyleStructured} {
		if BuildPrompt(style, req) != BuildPrompt(style, req) {
			t.Errorf("%s prompt differs between calls", style)
		}
	}
}

func TestParseStyle(t *testing.T) {
	cases := map[string]Style{"": StyleBrief, "brief": StyleBrief, " Structured ": StyleStructured}
	for in, want := range cases {
		got, err := ParseStyle(in)
		if err != nil || got != want {
			t.Errorf("ParseStyle(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseStyle("verbose"); err == nil {
		t.Error("expected error for unknown style")
	}
}
