package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/imagedata-mcp/internal/config"
	"github.com/ironsheep/imagedata-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := ""

	// Handle --version, --help and --config flags
	for i := 1; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--version", "-v", "version":
			fmt.Printf("imagedata-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "--config", "-c":
			if i+1 >= len(os.Args) {
				fmt.Fprintln(os.Stderr, "--config requires a file path")
				os.Exit(2)
			}
			i++
			configPath = os.Args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown argument: %s\n", os.Args[i])
			os.Exit(2)
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(configPath); err != nil {
			log.Fatalf("Config error: %v", err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	if cfg.Debug() {
		log.Printf("ImageData MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printHelp() {
	fmt.Println("imagedata-mcp - MCP server for image data")
	fmt.Println()
	fmt.Println("Usage: imagedata-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v        Print version information")
	fmt.Println("  --help, -h           Print this help message")
	fmt.Println("  --config, -c FILE    Load settings from a JSON file")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  IMAGEDATA_MCP_LOG_LEVEL=debug    Enable debug logging")
	fmt.Println("  IMAGEDATA_MCP_COLORMAP=NAME      Default render colormap (gray, hot, jet, viridis)")
	fmt.Println("  IMAGEDATA_MCP_MAX_CACHED=N       Maximum cached images (0 = unbounded)")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
