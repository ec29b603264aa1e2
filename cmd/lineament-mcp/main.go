package main

import (
	"fmt"
	"log"
	"os"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/config"
	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("lineament-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("lineament-mcp - MCP server for DEM lineament analysis")
			fmt.Println()
			fmt.Println("Usage: lineament-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  LINEAMENT_MCP_LOG_LEVEL=debug             Enable debug logging")
			fmt.Println("  LINEAMENT_PERCENTILE=85                   Zone threshold percentile")
			fmt.Println("  LINEAMENT_PERCENTILES=70,75,80,85,90,95   Trade-off percentiles")
			fmt.Println("  LINEAMENT_BIN_WIDTH=10                    Strike bin width (divides 180)")
			fmt.Println("  LINEAMENT_BUFFER_DISTANCES=1000,3000,6000 Fault buffer distances")
			fmt.Println("  LINEAMENT_MAX_CELL_BUDGET=4000000         Full-resolution cell cap")
			fmt.Println("  LINEAMENT_WORKERS=4                       Batch concurrency")
			fmt.Println("  LINEAMENT_CELL_SIZE_OVERRIDE=0            Nominal cell size override")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	applyLogAlias(cfg, os.Getenv)

	server.Version = Version
	if cfg.Debug() {
		log.Printf("Lineament MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Defaults: percentile=%g bin_width=%g buffers=%v budget=%d workers=%d",
			cfg.Percentile, cfg.BinWidth, cfg.BufferDistances, cfg.MaxCellBudget, cfg.Workers)
	}

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// applyLogAlias honours LINEAMENT_MCP_LOG_LEVEL=debug on top of the loaded
// configuration.
func applyLogAlias(cfg *config.Config, getenv func(string) string) {
	if getenv("LINEAMENT_MCP_LOG_LEVEL") == "debug" {
		cfg.LogLevel = "debug"
	}
}
