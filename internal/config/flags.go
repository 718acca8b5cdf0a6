package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bookbench",
		Short:         "Drive a concurrent workload against a bookstore and report throughput",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	def := Default()

	flags.BoolP("help", "h", false, "Show this help")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Worker pool and phases
	flags.IntP("workers", "w", def.Workers, "Number of concurrent workers")
	flags.Int("warmup-runs", def.WarmUpRuns, "Interactions per worker before measuring (discarded)")
	flags.IntP("measured-runs", "n", def.MeasuredRuns, "Measured interactions per worker")
	flags.Int64("random-seed", 0, "Seed for routing and sampling (0 picks a time-based seed)")
	flags.IntP("rate", "r", 0, "Interactions per second across all workers (0 means unlimited)")
	flags.String("arrival-model", string(ArrivalModelUniform), "Pacing model when rate is set (uniform or poisson)")
	flags.Duration("worker-timeout", 0, "Deadline for a single worker's run (0 means none)")

	// Interaction mix
	flags.Float64("rare-threshold", def.RareThreshold, "Routing draws below this percentage run the rare stock replenishment")
	flags.Float64("frequent-threshold", def.FrequentThreshold, "Routing draws below this percentage run the frequent stock top-up")

	// Batch sizes
	flags.Int("books-to-add", def.BooksToAdd, "Synthetic books generated per rare interaction")
	flags.Int("books-with-least-copies", def.BooksWithLeastCopies, "Lowest-stock books topped up per frequent stock interaction")
	flags.Int("copies-to-add", def.CopiesToAdd, "Copies added to each low-stock book")
	flags.Int("editor-picks", def.EditorPicksToFetch, "Editor picks fetched per customer interaction")
	flags.Int("distinct-books-to-buy", def.DistinctBooksToBuy, "Books sampled (with replacement) per customer interaction")
	flags.Int("copies-per-book", def.CopiesPerBookToBuy, "Copies bought of each sampled book")
	flags.Int("seed-books", def.SeedBooks, "Books added to the store before the run")

	// Target
	flags.Bool("local", false, "Run against an in-process bookstore instead of a server")
	flags.StringP("server", "s", def.ServerAddress, "Bookstore server address")
	flags.Duration("timeout", def.Timeout, "Per-call timeout for remote bookstore requests")

	// Output
	flags.StringP("output", "o", string(OutputText), "Report format: text, json or yaml")
	flags.Bool("log-errors", false, "Log each failed interaction to stderr")
	flags.String("log-level", def.LogLevel, "Log level (debug, info, warn, error)")
	flags.StringSlice("threshold", nil, "Pass/fail assertions (repeatable, e.g. 'success:rate >= 0.9')")

	// Tracing
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (enables tracing)")
	flags.String("tracing-protocol", def.Tracing.Protocol, "OTLP protocol: grpc or http")
	flags.String("tracing-service-name", "", "Service name reported on spans (default bookbench)")
	flags.Float64("tracing-sample-rate", def.Tracing.SampleRate, "Fraction of interactions traced (0.0-1.0)")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Bool("tracing-propagate", false, "Forward W3C trace context to the bookstore")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\n%s\n\nFlags:\n", cmd.UseLine(), cmd.Short)
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies explicitly set command-line flags, overriding
// values from the config file and environment.
func applyFlagOverrides(bindings []binding, fs *pflag.FlagSet) error {
	for _, b := range bindings {
		if b.flag == "" || !fs.Changed(b.flag) {
			continue
		}
		if err := assignFlag(b.ptr, fs, b.flag); err != nil {
			return fmt.Errorf("--%s: %w", b.flag, err)
		}
	}
	return nil
}

func assignFlag(ptr interface{}, fs *pflag.FlagSet, name string) error {
	switch dst := ptr.(type) {
	case *int:
		v, err := fs.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	case *int64:
		v, err := fs.GetInt64(name)
		if err != nil {
			return err
		}
		*dst = v
	case *float64:
		v, err := fs.GetFloat64(name)
		if err != nil {
			return err
		}
		*dst = v
	case *bool:
		v, err := fs.GetBool(name)
		if err != nil {
			return err
		}
		*dst = v
	case *string:
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(v)
	case *time.Duration:
		v, err := fs.GetDuration(name)
		if err != nil {
			return err
		}
		*dst = v
	case *[]string:
		v, err := fs.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = v
	case *OutputFormat:
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = OutputFormat(v)
	case *ArrivalModel:
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = ArrivalModel(v)
	default:
		return fmt.Errorf("unsupported flag target %T", ptr)
	}
	return nil
}
