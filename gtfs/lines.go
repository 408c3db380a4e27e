package gtfs

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/mvvtools/linecolors/transit"
)

// Source tells where a line's colours came from.
type Source string

const (
	SourcePDF Source = "PDF"
	SourceCSV Source = "CSV"
)

// DefaultRoutePattern matches the route ids of the regional network's
// city, regional and express buses.
const DefaultRoutePattern = `.*mvv.*\|(Stadt|Regional|Express).*`

// DefaultSuffixes mark extra services that share a line's colours.
var DefaultSuffixes = []string{"V", "W"}

// Agency is the operating agency of a line.
type Agency struct {
	ID   string
	Name string
}

// TransitLine is one row of the colour table.
type TransitLine struct {
	Line            string
	BackgroundColor string
	TextColor       string
	BorderColor     string
	Agency          *Agency
	Source          Source
}

// FromCollected turns harvested colours into lines with white text.
func FromCollected(colors []transit.LineColor) []TransitLine {
	lines := make([]TransitLine, 0, len(colors))
	for _, c := range colors {
		lines = append(lines, TransitLine{
			Line:            c.Line,
			BackgroundColor: c.Color.Hex(),
			TextColor:       "#ffffff",
			Source:          SourcePDF,
		})
	}
	return lines
}

// ApplyManual adds the rows of a manual colour table. A row replaces every
// line of the same name, so lines found in several maps can be fixed by
// hand.
func ApplyManual(lines []TransitLine, manual []Record) []TransitLine {
	for _, row := range manual {
		name := row["route_short_name"]
		kept := lines[:0:0]
		for _, l := range lines {
			if l.Line != name {
				kept = append(kept, l)
			}
		}
		lines = append(kept, TransitLine{
			Line:            name,
			BackgroundColor: row["background_color"],
			TextColor:       row["text_color"],
			BorderColor:     row["border_color"],
			Source:          SourceCSV,
		})
	}
	return lines
}

// Joiner assigns agencies from a GTFS feed to lines.
type Joiner struct {
	// RoutePattern selects the routes, by full match of route_id, whose
	// agencies belong to the network.
	RoutePattern *regexp.Regexp
	// Suffixes are appended to a line's name to find extra services.
	Suffixes []string
}

// NewJoiner compiles pattern, which must match route ids in full.
func NewJoiner(pattern string, suffixes []string) (*Joiner, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, err
	}
	return &Joiner{RoutePattern: re, Suffixes: suffixes}, nil
}

// Join sets the agency of every line that the network runs and adds a
// copy for each suffixed variant the feed knows. The result is sorted
// with Sort.
func (j *Joiner) Join(lines []TransitLine, feed *Feed) []TransitLine {
	agencies := make(map[string]Agency)
	for _, route := range feed.Routes {
		if !j.RoutePattern.MatchString(route["route_id"]) {
			continue
		}
		id := route["agency_id"]
		if _, ok := agencies[id]; ok {
			continue
		}
		for _, a := range feed.Agencies {
			if a["agency_id"] == id {
				agencies[id] = Agency{ID: id, Name: a["agency_name"]}
				break
			}
		}
	}

	var routes []Record
	for _, route := range feed.Routes {
		if _, ok := agencies[route["agency_id"]]; ok {
			routes = append(routes, route)
		}
	}
	sort.SliceStable(routes, func(a, b int) bool {
		return routes[a]["route_short_name"] < routes[b]["route_short_name"]
	})

	firstRoute := make(map[string]Record)
	for _, route := range routes {
		name := route["route_short_name"]
		if _, ok := firstRoute[name]; !ok {
			firstRoute[name] = route
		}
	}

	var out []TransitLine
	for _, l := range lines {
		if route, ok := firstRoute[l.Line]; ok {
			a := agencies[route["agency_id"]]
			l.Agency = &a
		}
		out = append(out, l)
		for _, suffix := range j.Suffixes {
			if _, ok := firstRoute[l.Line+suffix]; ok {
				variant := l
				variant.Line += suffix
				out = append(out, variant)
			}
		}
	}

	Sort(out)
	return out
}

// Sort orders lines by the number in their name. Names starting with a
// letter go last, names without any digits first.
func Sort(lines []TransitLine) {
	sort.SliceStable(lines, func(a, b int) bool {
		ka, okA := sortKey(lines[a].Line)
		kb, okB := sortKey(lines[b].Line)
		if okA != okB {
			return !okA
		}
		return ka < kb
	})
}

var nonDigits = regexp.MustCompile(`\D+`)

func sortKey(line string) (int, bool) {
	for _, r := range line {
		if unicode.IsLetter(r) {
			return 10000, true
		}
		break
	}
	n, err := strconv.Atoi(nonDigits.ReplaceAllString(line, ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Unassigned returns the lines no agency was found for.
func Unassigned(lines []TransitLine) []TransitLine {
	var out []TransitLine
	for _, l := range lines {
		if l.Agency == nil {
			out = append(out, l)
		}
	}
	return out
}

// Missing returns the short names of operator routes that have no line
// colour. S-Bahn routes are skipped.
func Missing(lines []TransitLine, operatorRoutes []Record) []string {
	have := make(map[string]bool, len(lines))
	for _, l := range lines {
		have[l.Line] = true
	}

	var missing []string
	for _, route := range operatorRoutes {
		name := route["route_short_name"]
		if strings.HasPrefix(name, "S") || have[name] {
			continue
		}
		missing = append(missing, name)
	}
	return missing
}
