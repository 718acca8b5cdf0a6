package config

import (
	"fmt"
	"strings"
	"time"
)

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

// Config holds every tunable of a workload run.
type Config struct {
	Workers              int           `mapstructure:"workers"`
	WarmUpRuns           int           `mapstructure:"warmup_runs"`
	MeasuredRuns         int           `mapstructure:"measured_runs"`
	RareThreshold        float64       `mapstructure:"rare_threshold"`
	FrequentThreshold    float64       `mapstructure:"frequent_threshold"`
	BooksToAdd           int           `mapstructure:"books_to_add"`
	BooksWithLeastCopies int           `mapstructure:"books_with_least_copies"`
	CopiesToAdd          int           `mapstructure:"copies_to_add"`
	EditorPicksToFetch   int           `mapstructure:"editor_picks"`
	DistinctBooksToBuy   int           `mapstructure:"distinct_books_to_buy"`
	CopiesPerBookToBuy   int           `mapstructure:"copies_per_book"`
	SeedBooks            int           `mapstructure:"seed_books"`
	RandomSeed           int64         `mapstructure:"random_seed"`
	Local                bool          `mapstructure:"local"`
	ServerAddress        string        `mapstructure:"server"`
	Timeout              time.Duration `mapstructure:"timeout"`
	WorkerTimeout        time.Duration `mapstructure:"worker_timeout"`
	Rate                 int           `mapstructure:"rate"`
	Arrival              ArrivalConfig `mapstructure:"arrival"`
	Output               OutputFormat  `mapstructure:"output"`
	LogErrors            bool          `mapstructure:"log_errors"`
	LogLevel             string        `mapstructure:"log_level"`
	Thresholds           []string      `mapstructure:"thresholds"`
	Tracing              TracingConfig `mapstructure:"tracing"`
	ConfigFile           string        `mapstructure:"-"`
}

type ArrivalConfig struct {
	Model ArrivalModel `mapstructure:"model"`
}

// TracingConfig configures OpenTelemetry export of interaction spans.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Enabled reports whether any tracing behaviour was requested.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || t.Propagate
}

// ShouldPropagate reports whether trace context is forwarded to the bookstore.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Enabled()
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Workers:              10,
		WarmUpRuns:           100,
		MeasuredRuns:         500,
		RareThreshold:        10,
		FrequentThreshold:    30,
		BooksToAdd:           5,
		BooksWithLeastCopies: 5,
		CopiesToAdd:          10,
		EditorPicksToFetch:   10,
		DistinctBooksToBuy:   5,
		CopiesPerBookToBuy:   1,
		SeedBooks:            10,
		ServerAddress:        "http://localhost:8081",
		Timeout:              30 * time.Second,
		Arrival:              ArrivalConfig{Model: ArrivalModelUniform},
		Output:               OutputText,
		LogLevel:             "info",
		Tracing:              TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if c.Workers < 1 {
		issues = append(issues, "workers must be >= 1")
	}

	if !withinPercent(c.RareThreshold) {
		issues = append(issues, "rare_threshold must be within [0, 100]")
	}
	if !withinPercent(c.FrequentThreshold) {
		issues = append(issues, "frequent_threshold must be within [0, 100]")
	}
	if !(c.RareThreshold <= c.FrequentThreshold) {
		issues = append(issues, "rare_threshold must be <= frequent_threshold")
	}

	counts := []struct {
		name  string
		value int
	}{
		{"warmup_runs", c.WarmUpRuns},
		{"measured_runs", c.MeasuredRuns},
		{"books_to_add", c.BooksToAdd},
		{"books_with_least_copies", c.BooksWithLeastCopies},
		{"copies_to_add", c.CopiesToAdd},
		{"editor_picks", c.EditorPicksToFetch},
		{"distinct_books_to_buy", c.DistinctBooksToBuy},
		{"copies_per_book", c.CopiesPerBookToBuy},
		{"seed_books", c.SeedBooks},
		{"rate", c.Rate},
	}
	for _, count := range counts {
		if count.value < 0 {
			issues = append(issues, fmt.Sprintf("%s must be >= 0", count.name))
		}
	}

	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.WorkerTimeout < 0 {
		issues = append(issues, "worker_timeout must be >= 0")
	}
	if !c.Local && strings.TrimSpace(c.ServerAddress) == "" {
		issues = append(issues, "server is required unless local mode is enabled")
	}

	switch c.Output {
	case "", OutputText, OutputJSON, OutputYAML:
	default:
		issues = append(issues, fmt.Sprintf("output format %q is not supported (use text, json or yaml)", c.Output))
	}

	switch c.Arrival.Model {
	case "", ArrivalModelUniform, ArrivalModelPoisson:
	default:
		issues = append(issues, fmt.Sprintf("arrival model %q is not supported", c.Arrival.Model))
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// withinPercent reports whether v lies in [0, 100]; false for NaN.
func withinPercent(v float64) bool {
	return v >= 0 && v <= 100
}

// highWorkerCount is the worker count above which Warnings flags the run.
const highWorkerCount = 500

// Warnings lists settings that are valid but make a run misleading or heavy.
// Callers log them before the run starts.
func (c Config) Warnings() []string {
	var notes []string
	if c.Workers > highWorkerCount {
		notes = append(notes, fmt.Sprintf("high worker count configured (%d); ensure the bookstore is sized for it", c.Workers))
	}
	if c.CopiesToAdd == 0 && c.FrequentThreshold > c.RareThreshold {
		notes = append(notes, "copies_to_add is 0; every frequent stock top-up will be rejected")
	}
	if c.FrequentThreshold < 100 {
		if c.DistinctBooksToBuy == 0 {
			notes = append(notes, "distinct_books_to_buy is 0; every customer purchase will fail with no books to buy")
		} else if c.CopiesPerBookToBuy == 0 {
			notes = append(notes, "copies_per_book is 0; every customer purchase will be rejected")
		}
	}
	return notes
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", t.Protocol))
	}
	if !(t.SampleRate >= 0 && t.SampleRate <= 1) {
		issues = append(issues, "tracing: sample_rate must be within [0, 1]")
	}
	return issues
}
