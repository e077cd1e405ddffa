package itinerary

import (
	"fmt"
	"strings"
)

// Style selects the prompt template.
type Style string

const (
	// StyleBrief asks for a free-form day-wise plan with budget notes.
	StyleBrief Style = "brief"
	// StyleStructured asks for fixed plain-text sections, including per-day map coordinates.
	StyleStructured Style = "structured"
)

// ParseStyle validates a configured style name.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case "", StyleBrief:
		return StyleBrief, nil
	case StyleStructured:
		return StyleStructured, nil
	default:
		return "", fmt.Errorf("unknown prompt style %q (want %q or %q)", s, StyleBrief, StyleStructured)
	}
}

const briefTemplate = `
Create a %s-day student travel itinerary.
Location: %s
Budget: %s
Group size: %s
Interests: %s

Include:
- Day-wise plan
- Budget food & stay
- Cost breakdown
`

const structuredTemplate = `
You are an AI travel planner for students.
Generate a smart, budget-friendly travel itinerary STRICTLY in the structured format below.
Do NOT add extra text, explanations, emojis, or markdown.
Return plain text only, exactly following the sections and labels.

INPUT DETAILS:
Location: %s
Total Budget (INR): %s
Number of Days: %s
Group Size: %s
Interests: %s

========================
DAY-WISE ITINERARY
========================
Day 1:
Title: <Main place / area name>
Plan:
- Morning:
- Afternoon:
- Evening:
- Night:

Day 2:
Title:
Plan:
- Morning:
- Afternoon:
- Evening:
- Night:

(Repeat until all days are covered)

========================
MAP LOCATIONS (COORDINATES)
========================
Day 1:
Place: <Place name>
Latitude: <decimal latitude>
Longitude: <decimal longitude>

Day 2:
Place:
Latitude:
Longitude:

(One primary location per day, coordinates must be accurate)

========================
ESTIMATED BUDGET BREAKDOWN
========================
Category        Amount
Food            <amount>
Stay            <amount>
Transport       <amount>

Total           <total amount>

========================
BUDGET TRAVEL TIPS
========================
- Tip 1
- Tip 2
- Tip 3

IMPORTANT RULES:
1. Locations must be real and match the city.
2. Coordinates must be valid decimal values usable in maps.
3. Keep the plan realistic for students.
4. Stay within the given total budget.
5. Use affordable transport and stays.
6. Do NOT include currency symbols.
7. Do NOT include markdown characters (*, **, ###).
`

// BuildPrompt renders req into the template for style. The output depends only on its inputs.
func BuildPrompt(style Style, req Request) string {
	if style == StyleStructured {
		return fmt.Sprintf(structuredTemplate,
			req.Location.String(),
			req.Budget.String(),
			req.Days.String(),
			req.GroupSize.String(),
			req.Interests.String(),
		)
	}
	return fmt.Sprintf(briefTemplate,
		req.Days.String(),
		req.Location.String(),
		req.Budget.String(),
		req.GroupSize.String(),
		req.Interests.String(),
	)
}
