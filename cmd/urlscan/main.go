// Command urlscan is a small CLI wrapper around the urldetector library:
// it scans a file (or stdin, line by line) for URLs and prints what it
// finds, colorized the way the teacher crawler tagged internal/external
// links.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/time/rate"

	"github.com/ygp4ph/urldetector/urldetector"
	"github.com/ygp4ph/urldetector/urlmarker"
)

// Config holds the command-line options for a single scan run.
type Config struct {
	InputPath   string
	Single      bool
	Normalize   bool
	JSONPath    string
	HTML        bool
	XML         bool
	JSONMode    bool
	JS          bool
	LinesPerSec float64
}

func main() {
	cfg := parseFlags()
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] %v\n", color.RedString("ERR"), err)
		if _, ok := err.(*urldetector.MalformedURL); ok {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

func parseFlags() Config {
	var cfg Config
	flag.BoolVar(&cfg.Single, "single", false, "treat input as a single URL (urldetector.ParseSingle)")
	flag.BoolVar(&cfg.Normalize, "normalize", false, "print the normalized host/path form")
	flag.StringVar(&cfg.JSONPath, "json", "", "write the detected URLs as a JSON array to this path")
	flag.BoolVar(&cfg.HTML, "html", false, "scan as HTML (detect.Html)")
	flag.BoolVar(&cfg.XML, "xml", false, "scan as XML (detect.Xml)")
	flag.BoolVar(&cfg.JSONMode, "json-mode", false, "scan as JSON text (detect.Json)")
	flag.BoolVar(&cfg.JS, "js", false, "scan as JavaScript source (detect.JavaScript)")
	flag.Float64Var(&cfg.LinesPerSec, "rate", 2000, "max stdin lines scanned per second")
	flag.Parse()
	if args := flag.Args(); len(args) > 0 {
		cfg.InputPath = args[0]
	}
	return cfg
}

func (c Config) options() urldetector.Options {
	switch {
	case c.HTML:
		return urldetector.Html
	case c.XML:
		return urldetector.Xml
	case c.JSONMode:
		return urldetector.Json
	case c.JS:
		return urldetector.JavaScript
	default:
		return urldetector.Default
	}
}

func run(cfg Config) error {
	if cfg.InputPath != "" {
		return scanFile(cfg)
	}
	return scanStdin(cfg)
}

func scanFile(cfg Config) error {
	data, err := os.ReadFile(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cfg.InputPath, err)
	}

	if cfg.Single {
		u, err := urldetector.ParseSingle(string(data))
		if err != nil {
			return err
		}
		return emit(cfg, []*urlmarker.URL{u})
	}

	found := urldetector.Detect(string(data), cfg.options())
	return emit(cfg, found)
}

// scanStdin streams stdin line by line, rate-limited to cfg.LinesPerSec
// lines per second so a pathological flood of adversarial input can't
// drive the detector at unbounded throughput.
func scanStdin(cfg Config) error {
	limiter := rate.NewLimiter(rate.Limit(cfg.LinesPerSec), 1)
	ctx := context.Background()

	var all []*urlmarker.URL
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		line := scanner.Text()
		if cfg.Single {
			u, err := urldetector.ParseSingle(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "[%s] %v\n", color.YellowString("WRN"), err)
				continue
			}
			all = append(all, u)
			continue
		}
		all = append(all, urldetector.Detect(line, cfg.options())...)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return emit(cfg, all)
}

func emit(cfg Config, found []*urlmarker.URL) error {
	for _, u := range found {
		full := u.FullURL()
		if cfg.Normalize {
			full = urldetector.Normalize(u).FullURL()
		}
		fmt.Printf("[%s] %s\n", color.CyanString("URL"), full)
	}
	if cfg.JSONPath != "" {
		return saveJSON(cfg, found)
	}
	return nil
}

// exportedURL is the JSON-friendly projection of a urlmarker.URL, mirroring
// the teacher's SaveJSON export-struct shape.
type exportedURL struct {
	Scheme   string `json:"scheme"`
	Username string `json:"username,omitempty"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Path     string `json:"path"`
	Query    string `json:"query,omitempty"`
	Fragment string `json:"fragment,omitempty"`
	FullURL  string `json:"full_url"`
}

func saveJSON(cfg Config, found []*urlmarker.URL) error {
	exported := make([]exportedURL, 0, len(found))
	for _, u := range found {
		v := u
		full := v.FullURL()
		if cfg.Normalize {
			n := urldetector.Normalize(v)
			v = &n.URL
			full = n.FullURL()
		}
		exported = append(exported, exportedURL{
			Scheme:   v.Scheme,
			Username: v.Username,
			Host:     v.Host,
			Port:     v.Port,
			Path:     v.Path,
			Query:    v.Query,
			Fragment: v.Fragment,
			FullURL:  full,
		})
	}

	file, err := os.Create(cfg.JSONPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", cfg.JSONPath, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(exported); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.JSONPath, err)
	}
	return nil
}
