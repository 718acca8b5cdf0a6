package threshold

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/certainbookstore/bookbench/internal/metrics"
)

var thresholdPattern = regexp.MustCompile(`^([a-z_]+):([a-z0-9]+)\s*([<>=!]+)\s*([0-9.]+)$`)

var latencyAggregates = []string{"p50", "p90", "p95", "p99", "avg", "min", "max"}

var supportedAggregates = map[string][]string{
	"success":          {"rate"},
	"customer":         {"rate", "count"},
	"throughput":       {"rate"},
	"distribution":     {"ratio"},
	"failed":           {"rate", "count"},
	"latency":          latencyAggregates,
	"rare_latency":     latencyAggregates,
	"frequent_latency": latencyAggregates,
	"customer_latency": latencyAggregates,
}

// Threshold represents a performance assertion that can pass or fail.
type Threshold struct {
	Metric    string  // e.g., "success", "latency", "customer_latency"
	Aggregate string  // e.g., "rate", "ratio", "p99", "avg"
	Operator  string  // e.g., "<", "<=", ">", ">=", "=="
	Value     float64 // The threshold value to compare against
	Raw       string  // Threshold as written, for display
}

// Result represents the outcome of evaluating a threshold.
type Result struct {
	Threshold Threshold
	Actual    float64
	Pass      bool
	Message   string
}

// Evaluator evaluates thresholds against a run's summary and latency statistics.
type Evaluator struct {
	thresholds []Threshold
}

// NewEvaluator creates a new threshold evaluator.
func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{
		thresholds: thresholds,
	}
}

// Evaluate checks all thresholds against the provided summary and stats.
func (e *Evaluator) Evaluate(summary metrics.Summary, stats metrics.Stats) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}

	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		result := e.evaluateOne(t, summary, stats)
		results = append(results, result)
	}
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}

func (e *Evaluator) evaluateOne(t Threshold, summary metrics.Summary, stats metrics.Stats) Result {
	actual, err := extractMetricValue(t, summary, stats)
	if err != nil {
		return Result{
			Threshold: t,
			Actual:    0,
			Pass:      false,
			Message:   fmt.Sprintf("error: %v", err),
		}
	}

	pass := compareValues(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}

	message := fmt.Sprintf("%s %s: %.4g %s %.4g", status, t.Raw, actual, t.Operator, t.Value)
	return Result{
		Threshold: t,
		Actual:    actual,
		Pass:      pass,
		Message:   message,
	}
}

// Parse parses a threshold string into a Threshold struct.
// Supported formats:
// - "success:rate >= 0.9"            (successful / measured interactions)
// - "customer:rate >= 0.95"          (customer success rate)
// - "customer:count > 100"           (successful customer interactions)
// - "throughput:rate > 50"           (successful customer interactions per second)
// - "distribution:ratio <= 0.8"      (customer transaction time / elapsed time)
// - "failed:rate < 0.1"              (failed / measured interactions)
// - "failed:count < 10"              (failed measured interactions)
// - "latency:p99 < 50"               (all interactions, ms)
// - "customer_latency:p95 < 20"      (one interaction kind, ms; also rare_, frequent_)
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	matches := thresholdPattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected format: metric:aggregate operator value, e.g., 'success:rate >= 0.9')", s)
	}

	metric := matches[1]
	aggregate := matches[2]
	operator := matches[3]
	valueStr := matches[4]

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", valueStr, err)
	}

	aggregates, ok := supportedAggregates[metric]
	if !ok {
		return Threshold{}, fmt.Errorf("unsupported metric: %q (supported: %s)", metric, strings.Join(metricNames(), ", "))
	}
	if !contains(aggregates, aggregate) {
		return Threshold{}, fmt.Errorf("unsupported aggregate %q for %s (supported: %s)", aggregate, metric, strings.Join(aggregates, ", "))
	}

	// Validate operator
	if !isValidOperator(operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: <, <=, >, >=, ==)", operator)
	}

	return Threshold{
		Metric:    metric,
		Aggregate: aggregate,
		Operator:  operator,
		Value:     value,
		Raw:       s,
	}, nil
}

// ParseMultiple parses multiple threshold strings.
func ParseMultiple(thresholds []string) ([]Threshold, error) {
	if len(thresholds) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(thresholds))
	var errs []string

	for i, s := range thresholds {
		t, err := Parse(s)
		if err != nil {
			errs = append(errs, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(errs, "; "))
	}

	return result, nil
}

func metricNames() []string {
	names := make([]string, 0, len(supportedAggregates))
	for name := range supportedAggregates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func isValidOperator(operator string) bool {
	valid := []string{"<", "<=", ">", ">=", "=="}
	for _, v := range valid {
		if operator == v {
			return true
		}
	}
	return false
}

func extractMetricValue(t Threshold, summary metrics.Summary, stats metrics.Stats) (float64, error) {
	switch t.Metric {
	case "success":
		return summary.SuccessRate, nil
	case "customer":
		if t.Aggregate == "count" {
			return float64(summary.SuccessfulCustomerInteractions), nil
		}
		return summary.CustomerSuccessRate, nil
	case "throughput":
		return summary.ThroughputPerSecond, nil
	case "distribution":
		return summary.Distribution, nil
	case "failed":
		failed := summary.MeasuredRuns - summary.SuccessfulInteractions
		if t.Aggregate == "count" {
			return float64(failed), nil
		}
		if summary.MeasuredRuns == 0 {
			return 0, nil
		}
		return float64(failed) / float64(summary.MeasuredRuns), nil
	case "latency":
		return extractLatencyMetric(t.Aggregate, stats.LatencyStats)
	}

	if kind, ok := strings.CutSuffix(t.Metric, "_latency"); ok {
		ls, found := stats.Interactions[kind]
		if !found {
			return 0, fmt.Errorf("no %s interactions recorded", kind)
		}
		return extractLatencyMetric(t.Aggregate, ls)
	}
	return 0, fmt.Errorf("unknown metric: %s", t.Metric)
}

func extractLatencyMetric(aggregate string, stats metrics.LatencyStats) (float64, error) {
	switch aggregate {
	case "p50":
		return stats.P50LatencyMs, nil
	case "p90":
		return stats.P90LatencyMs, nil
	case "p95":
		// Approximate p95 from p90 and p99
		return (stats.P90LatencyMs + stats.P99LatencyMs) / 2, nil
	case "p99":
		return stats.P99LatencyMs, nil
	case "avg":
		return stats.MeanLatencyMs, nil
	case "min":
		return stats.MinLatencyMs, nil
	case "max":
		return stats.MaxLatencyMs, nil
	default:
		return 0, fmt.Errorf("unsupported latency aggregate %q", aggregate)
	}
}

func compareValues(actual float64, operator string, expected float64) bool {
	// Handle floating point comparison with small epsilon
	epsilon := 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}
