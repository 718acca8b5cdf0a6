// Command bookstore-stub serves an in-memory bookstore over HTTP so bookbench can run in
// remote mode without a real backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/certainbookstore/bookbench/internal/bookstore"
	"github.com/certainbookstore/bookbench/internal/bookstore/server"
	"github.com/certainbookstore/bookbench/internal/workload"
)

const shutdownTimeout = 10 * time.Second

type options struct {
	listen     string
	seedBooks  int
	randomSeed int64
	logLevel   string
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:           "bookstore-stub",
		Short:         "Serve an in-memory bookstore over HTTP",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lvl, err := zerolog.ParseLevel(opts.logLevel)
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
				Level(lvl).With().Timestamp().Str("component", "bookstore-stub").Logger()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			ln, err := net.Listen("tcp", opts.listen)
			if err != nil {
				return err
			}
			return serve(ctx, ln, opts, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.listen, "listen", "l", "localhost:8081", "Address to listen on")
	flags.IntVar(&opts.seedBooks, "seed-books", 0, "Editor-pick books added at startup")
	flags.Int64Var(&opts.randomSeed, "random-seed", 0, "Seed for editor-pick selection (0 picks a time-based seed)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	return cmd
}

// serve runs the bookstore on ln until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, ln net.Listener, opts options, logger zerolog.Logger) error {
	seed := opts.randomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	store := bookstore.NewMemStore(seed)
	if opts.seedBooks > 0 {
		books, err := workload.Seed(ctx, store, rand.New(rand.NewSource(seed)), opts.seedBooks)
		if err != nil {
			ln.Close()
			return err
		}
		logger.Info().Int("books", len(books)).Msg("seeded store")
	}

	srv := &http.Server{
		Handler:      server.New(store, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", ln.Addr().String()).Msg("listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
