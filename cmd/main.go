// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"pii-redact/internal/config"
	"pii-redact/internal/entity"
	"pii-redact/internal/extract"
	"pii-redact/internal/filter"
	"pii-redact/internal/formatters"
	jsonformatter "pii-redact/internal/formatters/json"
	textformatter "pii-redact/internal/formatters/text"
	"pii-redact/internal/llm"
	"pii-redact/internal/observability"
	"pii-redact/internal/pipeline"
	"pii-redact/internal/version"
	"pii-redact/internal/web"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

func main() {
	// Parse command line flags
	inputText := flag.String("text", "", "Text to redact (mutually exclusive with --file)")
	inputFile := flag.String("file", "", "Path to the input file (plain text or PDF)")
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	rulesFile := flag.String("rules", "", "Path to false-positive rules file (YAML, overrides config)")
	categories := flag.String("categories", "", "Comma-separated categories to redact: email, phone, name, address, ssn, credit_card (default: all)")
	style := flag.String("style", "", "Redaction style: labels, black_boxes, custom (default: labels)")
	customLabel := flag.String("custom-label", "", "Replacement label for the custom style")
	outputFormat := flag.String("format", "", "Output format: text, json (default: text)")
	outputFile := flag.String("output", "", "Path to output file (if not specified, output to stdout)")
	verbose := flag.Bool("verbose", false, "Display per-span detail and reviewer notes")
	debug := flag.Bool("debug", false, "Enable debug logging of pipeline stages to stderr")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	showVersion := flag.Bool("version", false, "Show version information")
	webMode := flag.Bool("web", false, "Start web server mode instead of CLI redaction")
	webPort := flag.Int("port", 0, "Port for web server (default: 8080)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	// Load .env before anything reads GEMINI_API_KEY. A missing file is
	// the normal case outside development.
	_ = godotenv.Load()

	cfg := config.LoadOrDefault(*configFile)
	applyFlagOverrides(cfg, *categories, *style, *customLabel, *outputFormat, *webPort)

	// Auto-detect non-interactive environment
	if !isTerminal(os.Stdout) || os.Getenv("CI") != "" {
		*noColor = true
	}

	observer := newObserver(*verbose, *debug)

	p, err := buildPipeline(cfg, *rulesFile, observer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *webMode {
		if err := runWeb(cfg, p, observer); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runCLI(cfg, p, *inputText, *inputFile, *outputFile, *verbose, *noColor); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyFlagOverrides lets explicit flags win over the config file.
func applyFlagOverrides(cfg *config.Config, categories, style, customLabel, format string, port int) {
	if categories != "" {
		cfg.Defaults.Categories = splitList(categories)
	}
	if style != "" {
		cfg.Defaults.Style = style
	}
	if customLabel != "" {
		cfg.Defaults.CustomLabel = customLabel
	}
	if format != "" {
		cfg.Defaults.Format = format
	}
	if port > 0 {
		cfg.Server.Port = port
	}
}

func newObserver(verbose, debug bool) *observability.Observer {
	switch {
	case debug:
		return observability.New(observability.LevelDebug, os.Stderr)
	case verbose:
		return observability.New(observability.LevelMetrics, os.Stderr)
	default:
		return nil
	}
}

// buildPipeline assembles the detection pipeline from configuration.
func buildPipeline(cfg *config.Config, rulesFile string, observer *observability.Observer) (*pipeline.Pipeline, error) {
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	if rulesFile != "" {
		rules, err = filter.Load(rulesFile)
		if err != nil {
			return nil, err
		}
	}

	validator, err := llm.NewClient(cfg.LLMConfig(), observer)
	if err != nil {
		return nil, fmt.Errorf("%w\nSet %s in the environment or a .env file", err, config.APIKeyEnvVar)
	}

	return pipeline.New(pipeline.Config{
		Entities:  entity.NewDetector(entity.NewLexiconModel()),
		Rules:     rules,
		Validator: validator,
		MaxChars:  cfg.Limits.MaxChars,
		Observer:  observer,
	})
}

func runWeb(cfg *config.Config, p *pipeline.Pipeline, observer *observability.Observer) error {
	defaults, err := cfg.Settings()
	if err != nil {
		return err
	}
	server := web.NewServer(p, web.Options{
		Port:           cfg.Server.Port,
		MaxConcurrent:  cfg.Server.MaxConcurrent,
		MaxUploadBytes: int64(cfg.Server.MaxUploadBytes),
		Defaults:       defaults,
		Observer:       observer,
	})
	return server.Start()
}

func runCLI(cfg *config.Config, p *pipeline.Pipeline, inputText, inputFile, outputFile string, verbose, noColor bool) error {
	text, err := resolveInput(inputText, inputFile)
	if err != nil {
		return err
	}

	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	result, err := p.Redact(context.Background(), text, settings)
	if err != nil {
		return err
	}

	registry := formatters.NewRegistry()
	registry.Register(textformatter.NewFormatter())
	registry.Register(jsonformatter.NewFormatter())

	formatter, err := registry.Resolve(cfg.Defaults.Format)
	if err != nil {
		return err
	}

	output, err := formatter.Format(result, formatters.Options{
		Verbose: verbose,
		NoColor: noColor || outputFile != "",
	})
	if err != nil {
		return err
	}

	if outputFile != "" {
		return os.WriteFile(outputFile, []byte(output), 0o600)
	}
	fmt.Println(output)
	return nil
}

// resolveInput picks the text source: inline flag, file, or stdin when
// piped.
func resolveInput(inputText, inputFile string) (string, error) {
	switch {
	case inputText != "" && inputFile != "":
		return "", fmt.Errorf("--text and --file are mutually exclusive")
	case inputText != "":
		return inputText, nil
	case inputFile != "":
		return extract.FromFile(inputFile)
	case !isTerminal(os.Stdin):
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("error reading stdin: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("no input: pass --text, --file, or pipe text on stdin")
	}
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
