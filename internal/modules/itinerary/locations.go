package itinerary

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	mapSectionRe = regexp.MustCompile(`=+\s*MAP LOCATIONS \(COORDINATES\)[^=]*=+([\s\S]*?)(=+|$)`)
	dayHeaderRe  = regexp.MustCompile(`Day (\d+):\s*`)
	placeRe      = regexp.MustCompile(`Place:[ \t]*(.*)`)
	latitudeRe   = regexp.MustCompile(`Latitude:\s*([\d.\-]+)`)
	longitudeRe  = regexp.MustCompile(`Longitude:\s*([\d.\-]+)`)
)

// locationBlock is one "Day N:" entry of the MAP LOCATIONS section.
// Coordinates are nil when missing, unparsable, or out of range.
type locationBlock struct {
	Day   int
	Place string
	Lat   *float64
	Lng   *float64
}

func (b locationBlock) complete() bool {
	return b.Place != "" && b.Lat != nil && b.Lng != nil
}

// ExtractLocations returns the places of the MAP LOCATIONS section that carry
// a name and valid coordinates, in the order they appear.
func ExtractLocations(text string) []MapLocation {
	var out []MapLocation
	for _, b := range parseLocationBlocks(text) {
		if !b.complete() {
			continue
		}
		out = append(out, MapLocation{Day: b.Day, Place: b.Place, Lat: *b.Lat, Lng: *b.Lng, Source: SourceModel})
	}
	return out
}

// StripLocations removes the MAP LOCATIONS section for display.
func StripLocations(text string) string {
	return strings.TrimSpace(mapSectionRe.ReplaceAllString(text, "${2}"))
}

func parseLocationBlocks(text string) []locationBlock {
	m := mapSectionRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	section := m[1]

	headers := dayHeaderRe.FindAllStringSubmatchIndex(section, -1)
	blocks := make([]locationBlock, 0, len(headers))
	for i, h := range headers {
		end := len(section)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		body := section[h[1]:end]
		day, _ := strconv.Atoi(section[h[2]:h[3]])

		b := locationBlock{Day: day}
		if pm := placeRe.FindStringSubmatch(body); pm != nil {
			b.Place = strings.TrimSpace(pm[1])
		}
		if b.Place == "" {
			continue
		}
		b.Lat = parseCoordinate(latitudeRe, body, 90)
		b.Lng = parseCoordinate(longitudeRe, body, 180)
		blocks = append(blocks, b)
	}
	return blocks
}

func parseCoordinate(re *regexp.Regexp, body string, limit float64) *float64 {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < -limit || v > limit {
		return nil
	}
	return &v
}
