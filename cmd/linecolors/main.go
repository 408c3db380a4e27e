// Command linecolors harvests line colours from transit network maps and
// writes them as a colour table keyed by the GTFS agencies of a feed.
//
// Usage:
//
//	linecolors -agency agency.txt -routes routes.txt [flags] map.pdf...
//
// Settings may also come from a JSON file given with -config; flags that
// are set explicitly override it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/mvvtools/linecolors/gtfs"
	"github.com/mvvtools/linecolors/internal/config"
	"github.com/mvvtools/linecolors/reader"
	"github.com/mvvtools/linecolors/text"
	"github.com/mvvtools/linecolors/transit"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("linecolors: ")

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	collections, err := collectAll(ctx, cfg)
	if err != nil {
		return err
	}

	lines := gtfs.FromCollected(transit.Merge(collections...))
	if cfg.Manual != "" {
		manual, err := gtfs.LoadCSV(cfg.Manual)
		if err != nil {
			return err
		}
		lines = gtfs.ApplyManual(lines, manual)
	}

	feed, err := gtfs.LoadFeed(cfg.Agency, cfg.Routes)
	if err != nil {
		return err
	}
	joiner, err := gtfs.NewJoiner(cfg.RoutePattern, gtfs.DefaultSuffixes)
	if err != nil {
		return err
	}
	lines = joiner.Join(lines, feed)

	n, err := writeTable(cfg, lines)
	if err != nil {
		return err
	}
	log.Printf("wrote %d of %d lines to %s", n, len(lines), cfg.Out)

	var operatorRoutes []gtfs.Record
	if cfg.OperatorRoutes != "" {
		if operatorRoutes, err = gtfs.LoadCSV(cfg.OperatorRoutes); err != nil {
			return err
		}
	}
	if err := gtfs.WriteReport(os.Stdout, lines, operatorRoutes); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

// collectAll reads every configured PDF, at most cfg.Workers at a time.
// Results keep the order of cfg.PDFs so that earlier maps win on merge.
func collectAll(ctx context.Context, cfg *config.Config) ([][]transit.LineColor, error) {
	results := make([][]transit.LineColor, len(cfg.PDFs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, path := range cfg.PDFs {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lines, err := collect(path, cfg.Strict)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = lines
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func collect(path string, strict bool) ([]transit.LineColor, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	c, err := transit.NewCollector(text.WithStrictOperators(strict))
	if err != nil {
		return nil, err
	}
	if err := c.Collect(r); err != nil {
		return nil, err
	}
	for _, w := range c.Warnings() {
		log.Printf("%s: %s", path, w)
	}
	log.Printf("%s: %d lines from %d tokens", path, len(c.Lines()), c.Tokens())
	return c.Lines(), nil
}

func writeTable(cfg *config.Config, lines []gtfs.TransitLine) (int, error) {
	f, err := os.Create(cfg.Out)
	if err != nil {
		return 0, err
	}

	e := &gtfs.Exporter{Operator: cfg.Operator, Shape: cfg.Shape}
	n, err := e.Write(f, lines)
	if err != nil {
		f.Close()
		return 0, err
	}
	return n, f.Close()
}
