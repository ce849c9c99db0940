package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/petabencana/cap-feed-service/internal/config"
	"github.com/petabencana/cap-feed-service/internal/domain"
	"github.com/petabencana/cap-feed-service/internal/pipeline"
)

type options struct {
	envFile  string
	kind     string
	output   string
	logLevel string
	workers  int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "caprender [file]",
		Short: "Render a GeoJSON feature collection as a CAP 1.2 Atom feed.",
		Long: "Reads a GeoJSON FeatureCollection from file, or stdin when no file is\n" +
			"given, and writes the Atom feed of CAP alerts to stdout or --output.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			out := cmd.OutOrStdout()
			if opts.output != "" {
				f, err := os.Create(opts.output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			return run(cmd, opts, in, out)
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env", "", "An env file with CAP_* settings to load first.")
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", string(domain.KindFloods), "The feed to build: floods or reports.")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the feed to this file instead of stdout.")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "Log level for skip diagnostics on stderr.")
	cmd.Flags().IntVar(&opts.workers, "workers", 1, "Build alerts on this many goroutines.")

	return cmd
}

func run(cmd *cobra.Command, opts *options, in io.Reader, out io.Writer) error {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	kind, err := domain.ParseKind(opts.kind)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", opts.logLevel)
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	renderer := pipeline.NewRenderer(domain.NewAssembler(settings, domain.WithWorkers(opts.workers)), nil, logger, nil)
	doc, err := renderer.Render(cmd.Context(), kind, data)
	if err != nil {
		return err
	}

	if _, err := out.Write(doc.XML); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	logger.Info("feed rendered", "kind", kind, "entries", doc.Entries, "skipped", len(doc.Skipped))
	return nil
}
