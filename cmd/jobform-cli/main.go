package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/goliatone/go-jobform/internal/logging"
	"github.com/goliatone/go-jobform/pkg/form"
	"github.com/goliatone/go-jobform/pkg/renderers/tui"
)

func main() {
	format := flag.String("format", "pretty", "output format: json, form or pretty")
	output := flag.String("output", "", "output file (stdout if empty)")
	maxAttempts := flag.Int("max-attempts", 0, "give up after this many rejected submissions (0 = unlimited)")
	verbose := flag.Bool("v", false, "log debug output to stderr")
	flag.Parse()

	outputFormat, ok := tui.ParseOutputFormat(*format)
	if !ok {
		log.Fatalf("unknown format %q", *format)
	}

	level := "error"
	if *verbose {
		level = "debug"
	}
	logger := logging.New(level, "text", os.Stderr)

	renderer, err := tui.New(
		tui.WithOutputFormat(outputFormat),
		tui.WithMaxAttempts(*maxAttempts),
		tui.WithLogger(logger),
		tui.WithStdio(os.Stdin, os.Stdout),
	)
	if err != nil {
		log.Fatalf("tui: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	snapshot, err := renderer.Run(ctx, form.New(form.WithLogger(logger)))
	if errors.Is(err, tui.ErrAborted) {
		fmt.Fprintln(os.Stderr, "aborted")
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Failed to complete application: %v", err)
	}

	data, err := renderer.Format(snapshot)
	if err != nil {
		log.Fatalf("Failed to format application: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, data, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Application written to %s\n", *output)
	} else {
		fmt.Println(string(data))
	}
}
