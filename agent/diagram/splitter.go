package diagram

import (
	"strings"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
)

const (
	// BreakdownMarker separates the graph body from the trust boundary narrative.
	BreakdownMarker = "Trust Boundaries Breakdown:"
	// BreakdownNotFound replaces the breakdown when the marker is absent.
	BreakdownNotFound = "⚠ Trust boundary info not found."

	bannerDelimiter = "="
)

// Split separates a generated response into graph body and breakdown on the
// first occurrence of BreakdownMarker. Later occurrences stay in the breakdown
// verbatim. A response without the marker is returned whole as the graph body.
func Split(raw string) contractx.ParsedDiagram {
	parts := strings.SplitN(raw, BreakdownMarker, 2)
	if len(parts) != 2 {
		return contractx.ParsedDiagram{
			GraphBody: strings.TrimSpace(raw),
			Breakdown: BreakdownNotFound,
		}
	}

	return contractx.ParsedDiagram{
		GraphBody:   trimBanner(parts[0]),
		Breakdown:   BreakdownMarker + "\n" + strings.TrimSpace(parts[1]),
		MarkerFound: true,
	}
}

// trimBanner removes surrounding whitespace and whole "=====" banner lines
// until neither remains at either end.
func trimBanner(s string) string {
	s = strings.TrimSpace(s)
	for {
		lines := strings.Split(s, "\n")
		switch {
		case isBanner(lines[0]):
			lines = lines[1:]
		case isBanner(lines[len(lines)-1]):
			lines = lines[:len(lines)-1]
		default:
			return s
		}
		s = strings.TrimSpace(strings.Join(lines, "\n"))
	}
}

func isBanner(line string) bool {
	line = strings.TrimSpace(line)
	return line != "" && strings.Trim(line, bannerDelimiter) == ""
}
