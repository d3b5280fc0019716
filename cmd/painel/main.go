package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// ============================================================================
// PAINEL CLI — Labor-market dashboard from the command line
// ============================================================================

const version = "0.3.0"

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "import":
		runImport(args[1:])
	case "config":
		runConfig(args[1:])
	case "version", "--version", "-version":
		fmt.Printf("painel %s\n", version)
	case "help", "--help", "-h":
		usage()
	default:
		runQuery(args)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Painel — CAGED labor-market dashboard

Usage:
  painel [flags]                 compute the dashboard for a filter selection
  painel import [flags]          build a SQLite snapshot of the granular data
  painel config [flags]          print the resolved configuration
  painel version

Examples:
  # Baseline summary
  painel --base ./public --format text

  # One meso-region and chain, as a spreadsheet
  painel --base ./public --meso Oeste --cadeia Soja --format xlsx --out oeste.xlsx

  # Fetch assets from the published dashboard
  painel --base https://example.org/painel/ --periodo 2024-03 --format pretty

  # Snapshot a CSV export and query it
  painel import --cube cube.csv --dim sexo=sexo.csv --snapshot painel.db
  painel --snapshot painel.db --mun 410690 --format text

Environment:
  PAINEL_BASE           asset directory or base URL
  PAINEL_LOG_MODE       dev, prod or quiet
  PAINEL_SNAPSHOT       SQLite snapshot replacing the JSON cube
  PAINEL_HTTP_TIMEOUT   timeout for remote assets (e.g. 30s)
  PAINEL_CACHE_TTL      lifetime of memoized views

Query flags:
`)
	fs, _ := bindQuery()
	fs.SetOutput(os.Stderr)
	fs.PrintDefaults()
}

// ============================================================================
// CONFIG
// ============================================================================

func runConfig(args []string) {
	fs := newFlagSet("config")
	common := bindCommon(fs)
	_ = fs.Parse(args)

	cfg, err := common.resolve()
	if err != nil {
		fatalf("%v", err)
	}
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		fatalf("Failed to marshal config: %v", err)
	}
	fmt.Println(string(out))
}

// ============================================================================
// HELPERS
// ============================================================================

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
