package service

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/internal/contract"
	"github.com/jonesrussell/north-cloud/place-schema/internal/schema"
)

// VerifyService runs the contract scenarios.
type VerifyService struct {
	runner *contract.Runner
	opts   schema.Options
	log    logger.Logger
}

// NewVerifyService wraps runner. opts configure the offline analyzers and
// should match the body runner creates indexes from.
func NewVerifyService(runner *contract.Runner, opts schema.Options, log logger.Logger) *VerifyService {
	if log == nil {
		log = logger.NewNop()
	}
	return &VerifyService{runner: runner, opts: opts, log: log}
}

// Verify runs the named scenarios, or all of them, against the cluster. The
// error is only for requests that could not run; failed scenarios are in
// the report.
func (s *VerifyService) Verify(ctx context.Context, names ...string) (*contract.Report, error) {
	scenarios, err := contract.SelectScenarios(names...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return s.runner.Run(ctx, scenarios), nil
}

// VerifyOffline evaluates the named scenarios with the local analyzers.
func (s *VerifyService) VerifyOffline(names ...string) (*contract.Report, error) {
	scenarios, err := contract.SelectScenarios(names...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	report := contract.VerifyOffline(s.opts, scenarios)
	s.log.Info("Offline verification finished",
		logger.Bool("passed", report.Passed()),
		logger.Int("scenarios", len(report.Scenarios)),
	)
	return report, nil
}
