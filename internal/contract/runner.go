package contract

import (
	"context"
	"time"

	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/internal/metrics"
	"github.com/jonesrussell/north-cloud/place-schema/internal/schema"
)

const (
	defaultRepeat          = 2
	defaultScenarioTimeout = time.Minute
)

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	IndexPrefix string
	// Repeat is how many times each check searches. Scores must be identical
	// on every repetition.
	Repeat          int
	ScenarioTimeout time.Duration
	HealthTimeout   time.Duration
	SettleDelay     time.Duration
	KeepIndexes     bool
}

// Runner runs scenarios against a store, one suite per scenario.
type Runner struct {
	store   Store
	body    map[string]any
	opts    RunnerOptions
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewRunner returns a Runner that creates every scenario index from body.
func NewRunner(store Store, body map[string]any, opts RunnerOptions, log logger.Logger, m *metrics.Metrics) *Runner {
	if opts.Repeat < 1 {
		opts.Repeat = defaultRepeat
	}
	if opts.ScenarioTimeout <= 0 {
		opts.ScenarioTimeout = defaultScenarioTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{store: store, body: body, opts: opts, log: log, metrics: m}
}

// Run runs scenarios in order. It never stops early: every scenario gets
// its own index and its own result.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) *Report {
	report := &Report{
		Mode:           "cluster",
		MappingVersion: schema.MappingVersion,
		StartedAt:      time.Now().UTC(),
	}

	for _, sc := range scenarios {
		report.Scenarios = append(report.Scenarios, r.RunScenario(ctx, sc))
	}

	report.DurationMS = time.Since(report.StartedAt).Milliseconds()
	r.log.Info("Contract verification finished",
		logger.Bool("passed", report.Passed()),
		logger.Int("scenarios", len(report.Scenarios)),
		logger.Int64("duration_ms", report.DurationMS),
	)
	return report
}

// RunScenario runs a single scenario in a fresh index.
func (r *Runner) RunScenario(ctx context.Context, sc Scenario) ScenarioResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.opts.ScenarioTimeout)
	defer cancel()

	suite := NewSuite(r.store, r.body, SuiteOptions{
		IndexPrefix:   r.opts.IndexPrefix,
		HealthTimeout: r.opts.HealthTimeout,
		SettleDelay:   r.opts.SettleDelay,
		KeepIndex:     r.opts.KeepIndexes,
		Logger:        r.log,
	})
	log := r.log.With(logger.String("scenario", sc.Name), logger.String("index", suite.Index()))
	log.Info("Running contract scenario", logger.Int("documents", len(sc.Documents)), logger.Int("checks", len(sc.Checks)))

	for _, doc := range sc.Documents {
		suite.Action(func(ctx context.Context, s *Suite) error {
			return s.Store().IndexDocument(ctx, s.Index(), doc)
		})
	}

	result := ScenarioResult{Name: sc.Name, Index: suite.Index()}
	for _, check := range sc.Checks {
		suite.Assert(func(ctx context.Context, s *Suite) error {
			res := runCheck(ctx, s.Store(), s.Index(), check, r.opts.Repeat)
			result.Checks = append(result.Checks, res)
			r.metrics.RecordCheck(sc.Name, res.Passed)
			if !res.Passed {
				log.Warn("Contract check failed",
					logger.String("check", res.Name),
					logger.Strings("failures", res.Failures),
					logger.String("error", res.Error),
				)
			}
			return res.err()
		})
	}

	err := suite.Run(ctx)
	for _, stepErr := range StepErrors(err) {
		if stepErr.Stage != StageAssert {
			result.Errors = append(result.Errors, stepErr.Error())
		}
	}

	result.Passed = err == nil && len(result.Checks) == len(sc.Checks)
	elapsed := time.Since(start)
	result.DurationMS = elapsed.Milliseconds()
	r.metrics.RecordScenario(sc.Name, result.Passed, elapsed)

	if result.Passed {
		log.Info("Contract scenario passed", logger.Duration("duration", elapsed))
	} else {
		log.Error("Contract scenario failed", logger.Strings("errors", result.Errors), logger.Duration("duration", elapsed))
	}
	return result
}
