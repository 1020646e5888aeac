// Package main provides the omni conversation manager: a terminal chat
// client over local AI CLIs and OpenAI-compatible APIs that persists every
// conversation as a markdown transcript, organized into projects and
// namespaces with archived summaries.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

const version = "0.1.0"

// Config holds the command-line configuration.
type Config struct {
	StoragePath string
	Provider    string
	ConfigPath  string
	OpenAIModel string
	Plain       bool
	Setup       bool
	ShowVersion bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("Omni v%s\n", version)
		return
	}

	if err := config.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if config.Setup {
		if err := runSetup(config); err != nil {
			log.Fatalf("Setup error: %v", err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, config); err != nil {
		cancel()
		log.Fatalf("Application error: %v", err)
	}
}

// parseFlags parses command line flags and environment variables.
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.StoragePath, "storage", "", "Storage directory (default: ~/.omni, or storage_path from config)")
	flag.StringVar(&config.Provider, "provider", "", "Backend to use: claude, codex, gemini, openai (default: first available)")
	flag.StringVar(&config.ConfigPath, "config", "", "Path to config file (default: <storage>/config.json)")
	flag.StringVar(&config.OpenAIModel, "openai-model", "", "Model for the openai backend")
	flag.BoolVar(&config.Plain, "plain", false, "Disable styled markdown output")
	flag.BoolVar(&config.Setup, "setup", false, "Report installed backends and write an initial config")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Omni - a multi-backend chat manager\n\n")
		fmt.Fprintf(os.Stderr, "Usage: omni [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     enables the openai backend\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  omni                         # chat with the first available backend\n")
		fmt.Fprintf(os.Stderr, "  omni -provider gemini\n")
		fmt.Fprintf(os.Stderr, "  omni -storage /tmp/omni-test\n")
		fmt.Fprintf(os.Stderr, "  omni -setup                  # first-run backend detection\n")
	}

	flag.Parse()
	return config
}

// validate checks that the configuration is usable.
func (c *Config) validate() error {
	if c.StoragePath != "" {
		info, err := os.Stat(c.StoragePath)
		if err == nil && !info.IsDir() {
			return fmt.Errorf("storage path %q is not a directory", c.StoragePath)
		}
	}
	return nil
}
