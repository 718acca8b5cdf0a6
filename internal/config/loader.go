package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. BOOKBENCH_LOCAL=true.
const EnvPrefix = "BOOKBENCH"

// Loader handles loading configuration from files, environment and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// binding ties a Config field to its config-file keys and its flag name.
// Either side may be empty.
type binding struct {
	flag string
	keys []string
	ptr  interface{}
}

func bindingsFor(cfg *Config) []binding {
	return []binding{
		{flag: "workers", keys: []string{"workers", "concurrency"}, ptr: &cfg.Workers},
		{flag: "warmup-runs", keys: []string{"warmup_runs", "warmupruns", "warmup-runs"}, ptr: &cfg.WarmUpRuns},
		{flag: "measured-runs", keys: []string{"measured_runs", "measuredruns", "measured-runs", "runs"}, ptr: &cfg.MeasuredRuns},
		{flag: "rare-threshold", keys: []string{"rare_threshold", "rarethreshold", "rare-threshold"}, ptr: &cfg.RareThreshold},
		{flag: "frequent-threshold", keys: []string{"frequent_threshold", "frequentthreshold", "frequent-threshold"}, ptr: &cfg.FrequentThreshold},
		{flag: "books-to-add", keys: []string{"books_to_add", "bookstoadd", "books-to-add"}, ptr: &cfg.BooksToAdd},
		{flag: "books-with-least-copies", keys: []string{"books_with_least_copies", "bookswithleastcopies", "books-with-least-copies"}, ptr: &cfg.BooksWithLeastCopies},
		{flag: "copies-to-add", keys: []string{"copies_to_add", "copiestoadd", "copies-to-add"}, ptr: &cfg.CopiesToAdd},
		{flag: "editor-picks", keys: []string{"editor_picks", "editorpicks", "editor-picks"}, ptr: &cfg.EditorPicksToFetch},
		{flag: "distinct-books-to-buy", keys: []string{"distinct_books_to_buy", "distinctbookstobuy", "distinct-books-to-buy"}, ptr: &cfg.DistinctBooksToBuy},
		{flag: "copies-per-book", keys: []string{"copies_per_book", "copiesperbook", "copies-per-book"}, ptr: &cfg.CopiesPerBookToBuy},
		{flag: "seed-books", keys: []string{"seed_books", "seedbooks", "seed-books"}, ptr: &cfg.SeedBooks},
		{flag: "random-seed", keys: []string{"random_seed", "randomseed", "random-seed"}, ptr: &cfg.RandomSeed},
		{flag: "local", keys: []string{"local"}, ptr: &cfg.Local},
		{flag: "server", keys: []string{"server", "server_address"}, ptr: &cfg.ServerAddress},
		{flag: "timeout", keys: []string{"timeout"}, ptr: &cfg.Timeout},
		{flag: "worker-timeout", keys: []string{"worker_timeout", "workertimeout", "worker-timeout"}, ptr: &cfg.WorkerTimeout},
		{flag: "rate", keys: []string{"rate"}, ptr: &cfg.Rate},
		{flag: "arrival-model", keys: []string{"arrival_model", "arrivalmodel", "arrival-model"}, ptr: &cfg.Arrival.Model},
		{flag: "output", keys: []string{"output"}, ptr: &cfg.Output},
		{flag: "log-errors", keys: []string{"log_errors", "logerrors", "log-errors"}, ptr: &cfg.LogErrors},
		{flag: "log-level", keys: []string{"log_level", "loglevel", "log-level"}, ptr: &cfg.LogLevel},
		{flag: "threshold", keys: []string{"thresholds"}, ptr: &cfg.Thresholds},
		{flag: "tracing-endpoint", ptr: &cfg.Tracing.Endpoint},
		{flag: "tracing-protocol", ptr: &cfg.Tracing.Protocol},
		{flag: "tracing-service-name", ptr: &cfg.Tracing.ServiceName},
		{flag: "tracing-sample-rate", ptr: &cfg.Tracing.SampleRate},
		{flag: "tracing-insecure", ptr: &cfg.Tracing.Insecure},
		{flag: "tracing-propagate", ptr: &cfg.Tracing.Propagate},
	}
}

// Load parses command-line arguments, the optional configuration file and
// environment overrides to produce a Config. Precedence: flags, environment,
// file, defaults.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if wantsHelp, err := flagSet.GetBool("help"); err == nil && wantsHelp {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(extra, " "))
	}

	configPath, _ := flagSet.GetString("config")
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	cfg.ConfigFile = configPath
	bindings := bindingsFor(&cfg)

	if err := applyConfigSettings(&cfg, bindings, cfgViper.AllSettings()); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(bindings, flagSet); err != nil {
		return nil, err
	}

	cfg.ServerAddress = strings.TrimRight(strings.TrimSpace(cfg.ServerAddress), "/")
	cfg.Output = OutputFormat(strings.ToLower(strings.TrimSpace(string(cfg.Output))))
	cfg.Arrival.Model = ArrivalModel(strings.ToLower(strings.TrimSpace(string(cfg.Arrival.Model))))
	cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(cfg.Tracing.Protocol))
	if cfg.Output == "" {
		cfg.Output = OutputText
	}
	if cfg.Arrival.Model == "" {
		cfg.Arrival.Model = ArrivalModelUniform
	}

	return &cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, bindings []binding, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	for _, b := range bindings {
		if len(b.keys) == 0 {
			continue
		}
		raw, ok := lookupSetting(settings, b.keys...)
		if !ok {
			continue
		}
		if err := assignSetting(b.ptr, raw); err != nil {
			return fmt.Errorf("%s: %w", b.keys[0], err)
		}
	}

	if raw, ok := lookupSetting(settings, "arrival"); ok {
		arrival, err := parseArrival(raw)
		if err != nil {
			return fmt.Errorf("arrival: %w", err)
		}
		if arrival.Model != "" {
			cfg.Arrival = arrival
		}
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := applyTracingSettings(&cfg.Tracing, raw); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}

	return nil
}

// applyEnvOverrides reads BOOKBENCH_* variables. Only switches that select the
// execution mode are read from the environment.
func applyEnvOverrides(cfg *Config) error {
	env := viper.New()
	env.SetEnvPrefix(EnvPrefix)
	env.AutomaticEnv()

	if raw := env.Get("local"); raw != nil {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("%s_LOCAL: %w", EnvPrefix, err)
		}
		cfg.Local = val
	}
	if raw := env.Get("server"); raw != nil {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("%s_SERVER: %w", EnvPrefix, err)
		}
		if strings.TrimSpace(val) != "" {
			cfg.ServerAddress = val
		}
	}
	return nil
}

func assignSetting(ptr interface{}, raw interface{}) error {
	switch dst := ptr.(type) {
	case *int:
		v, err := asInt(raw)
		if err != nil {
			return err
		}
		*dst = v
	case *int64:
		v, err := asInt64(raw)
		if err != nil {
			return err
		}
		*dst = v
	case *float64:
		v, err := asFloat64(raw)
		if err != nil {
			return err
		}
		*dst = v
	case *bool:
		v, err := asBool(raw)
		if err != nil {
			return err
		}
		*dst = v
	case *string:
		v, err := asString(raw)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(v)
	case *time.Duration:
		v, err := asDuration(raw)
		if err != nil {
			return err
		}
		*dst = v
	case *[]string:
		v, err := asStringSlice(raw)
		if err != nil {
			return err
		}
		*dst = v
	case *OutputFormat:
		v, err := asString(raw)
		if err != nil {
			return err
		}
		*dst = OutputFormat(v)
	case *ArrivalModel:
		v, err := asString(raw)
		if err != nil {
			return err
		}
		*dst = ArrivalModel(v)
	default:
		return fmt.Errorf("unsupported setting target %T", ptr)
	}
	return nil
}

func parseArrival(value interface{}) (ArrivalConfig, error) {
	if value == nil {
		return ArrivalConfig{}, nil
	}
	if s, ok := value.(string); ok {
		return ArrivalConfig{Model: ArrivalModel(strings.ToLower(strings.TrimSpace(s)))}, nil
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return ArrivalConfig{}, err
	}
	raw, ok := lookupSetting(entry, "model")
	if !ok {
		return ArrivalConfig{}, fmt.Errorf("model field is required")
	}
	model, err := asString(raw)
	if err != nil {
		return ArrivalConfig{}, fmt.Errorf("model: %w", err)
	}
	return ArrivalConfig{Model: ArrivalModel(strings.ToLower(strings.TrimSpace(model)))}, nil
}

func applyTracingSettings(tracing *TracingConfig, value interface{}) error {
	entry, err := toStringKeyMap(value)
	if err != nil {
		return err
	}
	fields := []struct {
		keys []string
		ptr  interface{}
	}{
		{[]string{"endpoint"}, &tracing.Endpoint},
		{[]string{"protocol"}, &tracing.Protocol},
		{[]string{"service_name", "servicename", "service-name"}, &tracing.ServiceName},
		{[]string{"sample_rate", "samplerate", "sample-rate"}, &tracing.SampleRate},
		{[]string{"insecure"}, &tracing.Insecure},
		{[]string{"propagate"}, &tracing.Propagate},
	}
	for _, f := range fields {
		raw, ok := lookupSetting(entry, f.keys...)
		if !ok {
			continue
		}
		if err := assignSetting(f.ptr, raw); err != nil {
			return fmt.Errorf("%s: %w", f.keys[0], err)
		}
	}
	return nil
}
