// Package config holds the settings of the linecolors command. Settings
// come from an optional JSON file and are overridden by command-line flags.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/mvvtools/linecolors/gtfs"
)

// Config holds all settings of one run.
type Config struct {
	// PDFs are the network maps to harvest, in priority order.
	PDFs []string `json:"pdfs"`

	// Agency and Routes are the agency.txt and routes.txt of the GTFS feed.
	Agency string `json:"agency"`
	Routes string `json:"routes"`

	// Manual is an optional CSV of hand-maintained colours.
	Manual string `json:"manual"`

	// OperatorRoutes is an optional route list of the operator, used to
	// report lines without a colour.
	OperatorRoutes string `json:"operator_routes"`

	// Out is the colour table to write.
	Out string `json:"out"`

	Operator     string `json:"operator"`
	Shape        string `json:"shape"`
	RoutePattern string `json:"route_pattern"`

	// Workers bounds how many PDFs are read at once.
	Workers int `json:"workers"`

	// Strict fails on content stream operators without a handler.
	Strict bool `json:"strict"`
}

// Default returns the settings used when neither file nor flags set them.
func Default() *Config {
	return &Config{
		Out:          "mvv_colors.csv",
		Operator:     gtfs.DefaultOperator,
		Shape:        gtfs.DefaultShape,
		RoutePattern: gtfs.DefaultRoutePattern,
		Workers:      runtime.NumCPU(),
	}
}

// Load reads a JSON config file over the defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file '%s': %w", filename, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("config file '%s' is empty", filename)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config '%s': %w", filename, err)
	}
	return cfg, nil
}

// stringList is a flag that may be given more than once.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse reads the config file named by -config, applies the flags that were
// set explicitly, appends positional arguments to the PDFs and validates
// the result.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("linecolors", flag.ContinueOnError)
	configPath := fs.String("config", "", "JSON config `file`")

	var pdfs stringList
	flags := Default()
	fs.Var(&pdfs, "pdf", "network map `PDF` to read; repeatable")
	fs.StringVar(&flags.Agency, "agency", "", "GTFS agency.txt")
	fs.StringVar(&flags.Routes, "routes", "", "GTFS routes.txt")
	fs.StringVar(&flags.Manual, "manual", "", "CSV of manually maintained colours")
	fs.StringVar(&flags.OperatorRoutes, "operator-routes", "", "operator route list to check for missing lines")
	fs.StringVar(&flags.Out, "out", flags.Out, "colour table to write")
	fs.StringVar(&flags.Operator, "operator", flags.Operator, "operator name in the colour table")
	fs.StringVar(&flags.Shape, "shape", flags.Shape, "line shape in the colour table")
	fs.StringVar(&flags.RoutePattern, "route-pattern", flags.RoutePattern, "`regexp` selecting network route ids")
	fs.IntVar(&flags.Workers, "workers", flags.Workers, "PDFs read concurrently")
	fs.BoolVar(&flags.Strict, "strict", false, "fail on unsupported content stream operators")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if *configPath != "" {
		loaded, err := Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pdf":
			cfg.PDFs = append([]string(nil), pdfs...)
		case "agency":
			cfg.Agency = flags.Agency
		case "routes":
			cfg.Routes = flags.Routes
		case "manual":
			cfg.Manual = flags.Manual
		case "operator-routes":
			cfg.OperatorRoutes = flags.OperatorRoutes
		case "out":
			cfg.Out = flags.Out
		case "operator":
			cfg.Operator = flags.Operator
		case "shape":
			cfg.Shape = flags.Shape
		case "route-pattern":
			cfg.RoutePattern = flags.RoutePattern
		case "workers":
			cfg.Workers = flags.Workers
		case "strict":
			cfg.Strict = flags.Strict
		}
	})
	cfg.PDFs = append(cfg.PDFs, fs.Args()...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
