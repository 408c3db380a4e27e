package gtfs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mvvtools/linecolors/graphicsstate"
	"github.com/mvvtools/linecolors/transit"
)

const agencyTxt = "\ufeffagency_id,agency_name,agency_url\n" +
	"1,Regionalverkehr Oberbayern,https://rvo.example\n" +
	"2,Stadtwerke,https://swm.example\n" +
	"3,Unbeteiligt,https://x.example\n"

const routesTxt = `route_id,agency_id,route_short_name,route_type
# comment lines are skipped
de:mvv:210|Regional,1,210,3
de:mvv:210V|Regional,1,210V,3
de:mvv:X201|Express,1,X201,3
de:mvv:100|Stadt,2,100,3
de:mvv:226|Regional,2,226,3
de:other:301|Regional,3,301,3
de:xyz:999,1,999,3
`

func readString(t *testing.T, s string) []Record {
	t.Helper()

	records, err := ReadCSV(strings.NewReader(s))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	return records
}

func testFeed(t *testing.T) *Feed {
	return &Feed{Agencies: readString(t, agencyTxt), Routes: readString(t, routesTxt)}
}

func TestReadCSV(t *testing.T) {
	agencies := readString(t, agencyTxt)
	if len(agencies) != 3 {
		t.Fatalf("expected 3 agencies, got %d", len(agencies))
	}
	if got := agencies[0]["agency_id"]; got != "1" {
		t.Errorf("agency_id with BOM header = %q, want 1", got)
	}

	routes := readString(t, routesTxt)
	if len(routes) != 7 {
		t.Fatalf("expected 7 routes, got %d", len(routes))
	}

	short := readString(t, "a,b,c\n1\n")
	if diff := cmp.Diff([]Record{{"a": "1", "b": "", "c": ""}}, short); diff != "" {
		t.Errorf("short row mismatch (-want +got):\n%s", diff)
	}

	if got := readString(t, ""); got != nil {
		t.Errorf("empty input = %v, want nil", got)
	}

	if _, err := ReadCSV(strings.NewReader("a,b\n\"unterminated\n")); err == nil {
		t.Error("expected error for a broken quote")
	}
}

func TestLoadFeed(t *testing.T) {
	dir := t.TempDir()
	agencyPath := filepath.Join(dir, "agency.txt")
	routesPath := filepath.Join(dir, "routes.txt")
	os.WriteFile(agencyPath, []byte(agencyTxt), 0644)
	os.WriteFile(routesPath, []byte(routesTxt), 0644)

	feed, err := LoadFeed(agencyPath, routesPath)
	if err != nil {
		t.Fatalf("LoadFeed failed: %v", err)
	}
	if len(feed.Agencies) != 3 || len(feed.Routes) != 7 {
		t.Errorf("feed has %d agencies and %d routes", len(feed.Agencies), len(feed.Routes))
	}

	if _, err := LoadFeed(filepath.Join(dir, "missing.txt"), routesPath); err == nil {
		t.Error("expected error for a missing agency file")
	}
}

func TestFromCollectedAndManual(t *testing.T) {
	lines := FromCollected([]transit.LineColor{
		{Line: "323", Color: graphicsstate.RGB{R: 1}},
		{Line: "210", Color: graphicsstate.RGB{G: 1}},
	})
	manual := readString(t, "route_short_name,background_color,text_color,border_color\n323,#123456,#000000,#ffffff\n")

	got := ApplyManual(lines, manual)
	want := []TransitLine{
		{Line: "210", BackgroundColor: "#00ff00", TextColor: "#ffffff", Source: SourcePDF},
		{Line: "323", BackgroundColor: "#123456", TextColor: "#000000", BorderColor: "#ffffff", Source: SourceCSV},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if lines[0].Line != "323" || lines[0].Source != SourcePDF {
		t.Error("ApplyManual modified its input")
	}
}

func TestJoin(t *testing.T) {
	j, err := NewJoiner(DefaultRoutePattern, DefaultSuffixes)
	if err != nil {
		t.Fatalf("NewJoiner failed: %v", err)
	}

	lines := []TransitLine{
		{Line: "X201", BackgroundColor: "#aaaaaa", Source: SourcePDF},
		{Line: "226", BackgroundColor: "#bbbbbb", Source: SourcePDF},
		{Line: "210", BackgroundColor: "#cccccc", Source: SourcePDF},
		{Line: "301", BackgroundColor: "#dddddd", Source: SourcePDF},
		{Line: "999", BackgroundColor: "#eeeeee", Source: SourceCSV},
	}
	got := j.Join(lines, testFeed(t))

	rvo := &Agency{ID: "1", Name: "Regionalverkehr Oberbayern"}
	swm := &Agency{ID: "2", Name: "Stadtwerke"}
	want := []TransitLine{
		{Line: "210", BackgroundColor: "#cccccc", Agency: rvo, Source: SourcePDF},
		{Line: "210V", BackgroundColor: "#cccccc", Agency: rvo, Source: SourcePDF},
		{Line: "226", BackgroundColor: "#bbbbbb", Agency: swm, Source: SourcePDF},
		{Line: "301", BackgroundColor: "#dddddd", Source: SourcePDF},
		{Line: "999", BackgroundColor: "#eeeeee", Agency: rvo, Source: SourceCSV},
		{Line: "X201", BackgroundColor: "#aaaaaa", Agency: rvo, Source: SourcePDF},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Join mismatch (-want +got):\n%s", diff)
	}
}

func TestNewJoinerBadPattern(t *testing.T) {
	if _, err := NewJoiner("(", nil); err == nil {
		t.Error("expected error for an invalid pattern")
	}
}

func TestSort(t *testing.T) {
	lines := []TransitLine{{Line: "X201"}, {Line: "(?)"}, {Line: "1041"}, {Line: "226W"}, {Line: "AÖ9"}, {Line: "226"}, {Line: "21/2"}}
	Sort(lines)

	var got []string
	for _, l := range lines {
		got = append(got, l.Line)
	}
	want := []string{"(?)", "21/2", "226W", "226", "1041", "X201", "AÖ9"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sort mismatch (-want +got):\n%s", diff)
	}
}

func TestExport(t *testing.T) {
	lines := []TransitLine{
		{Line: "210", BackgroundColor: "#e3000f", TextColor: "#ffffff", Agency: &Agency{ID: "1", Name: "Busse, Bahnen \"und\" mehr"}},
		{Line: "301", BackgroundColor: "#000000", TextColor: "#ffffff"},
		{Line: "226", BackgroundColor: "#00ff00", TextColor: "#000000", BorderColor: "#ffffff", Agency: &Agency{ID: "2", Name: "A\\B\nC"}},
	}

	var sb strings.Builder
	n, err := NewExporter().Write(&sb, lines)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 2 {
		t.Errorf("wrote %d records, want 2", n)
	}

	want := `mvv-regional-bus,210,,,#e3000f,#ffffff,,rectangle,,1,Busse\, Bahnen \"und\" mehr` + "\r\n" +
		`mvv-regional-bus,226,,,#00ff00,#000000,#ffffff,rectangle,,2,A\\B\nC` + "\r\n"
	if got := sb.String(); got != want {
		t.Errorf("export mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestReport(t *testing.T) {
	lines := []TransitLine{
		{Line: "210", Agency: &Agency{ID: "1"}, Source: SourcePDF},
		{Line: "301", Source: SourcePDF},
		{Line: "978", Source: SourceCSV},
	}
	operatorRoutes := readString(t, "route_short_name\n210\nS8\n226\n301\n")

	var sb strings.Builder
	if err := WriteReport(&sb, lines, operatorRoutes); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	want := "No MVV operated line found for route id 301. (Source: PDF)\n" +
		"No MVV operated line found for route id 978. (Source: CSV)\n" +
		"Missing MVV line: 226\n"
	if got := sb.String(); got != want {
		t.Errorf("report mismatch:\n got %q\nwant %q", got, want)
	}
}
