package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
)

const version = "costar v0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// run dispatches one command. Reports go to stdout, logs to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "detect":
		return handleDetect(ctx, rest, stdout, stderr)
	case "graph":
		return handleGraph(ctx, rest, stdout, stderr)
	case "quality":
		return handleQuality(ctx, rest, stdout, stderr)
	case "clusters":
		return handleClusters(ctx, rest, stdout, stderr)
	case "centrality":
		return handleCentrality(ctx, rest, stdout, stderr)
	case "match":
		return handleMatch(ctx, rest, stdout, stderr)
	case "stability":
		return handleStability(ctx, rest, stdout, stderr)
	case "path":
		return handlePath(ctx, rest, stdout, stderr)
	case "help", "--help", "-h":
		printUsage(stdout)
		return nil
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, version)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	usage := `costar - actor co-appearance communities

Usage:
  costar <command> [options]

Available Commands:
  graph       Size, components, clustering and best-connected actors
  detect      Detect communities for every seed and save them
  quality     Coverage, performance and community summaries of a saved run
  clusters    Revenue, gender and genre profile of each community of a run
  centrality  Rank actors by Katz, closeness and betweenness
  match       Match communities across saved runs
  stability   Estimate how reproducible the saved runs are
  path        Shortest co-star chain between two actors
  help        Show this help message
  version     Show version information

Common Flags:
  -config FILE      YAML config file
  -env FILE         .env file to load (default: .env when present)
  -data-dir DIR     MovieSummaries directory
  -store-dir DIR    Partition directory for the file store
  -seeds LIST       Seeds, e.g. 1,2,3 or 1-5
  -log-level LEVEL  debug, info, warn or error
  -metrics FILE     Write Prometheus metrics to FILE on exit

Examples:
  costar graph -top 20
  costar detect -seeds 1-5 -workers 4
  costar quality -seed 3 -take-film-fraction 0.6
  costar clusters -seed 3 -limit 10
  costar centrality -seed 1 -community 0 -top 20
  costar match -threshold 0.9 -first 10
`
	fmt.Fprint(w, usage)
}
