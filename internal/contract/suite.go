// Package contract verifies the abbreviation field contract against a live
// cluster: every scenario gets a fresh index, indexes its documents, makes
// them searchable and then checks hit counts and scores.
package contract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
)

const (
	defaultIndexPrefix   = "place-schema"
	defaultHealthTimeout = 30 * time.Second
	cleanupTimeout       = 30 * time.Second
)

// Stage names the part of Suite.Run a StepError came from.
type Stage string

const (
	StageCreateIndex Stage = "create_index"
	StageWaitIndex   Stage = "wait_for_index"
	StageAction      Stage = "action"
	StageRefresh     Stage = "refresh"
	StageSettle      Stage = "settle"
	StageAssert      Stage = "assert"
	StageCleanup     Stage = "cleanup"
)

// StepError is a failure of one step of a suite.
type StepError struct {
	Stage Stage
	Step  int
	Err   error
}

func (e *StepError) Error() string {
	if e.Stage == StageAction || e.Stage == StageAssert {
		return fmt.Sprintf("%s %d: %v", e.Stage, e.Step+1, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepErrors flattens the error returned by Suite.Run.
func StepErrors(err error) []*StepError {
	if err == nil {
		return nil
	}
	var out []*StepError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, StepErrors(e)...)
		}
		return out
	}
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		out = append(out, stepErr)
	}
	return out
}

// Step is one action or assertion.
type Step func(ctx context.Context, s *Suite) error

// SuiteOptions configures a Suite.
type SuiteOptions struct {
	IndexPrefix string
	// HealthTimeout bounds the wait for the new index to reach yellow.
	HealthTimeout time.Duration
	// SettleDelay is slept after the refresh barrier. Zero skips it.
	SettleDelay time.Duration
	// KeepIndex leaves the index in place after Run.
	KeepIndex bool
	Logger    logger.Logger
}

// Suite runs ordered actions, then a refresh barrier, then ordered
// assertions against one freshly created index.
type Suite struct {
	store   Store
	body    map[string]any
	opts    SuiteOptions
	index   string
	log     logger.Logger
	actions []Step
	asserts []Step
}

// NewSuite prepares a suite whose index is created from body.
func NewSuite(store Store, body map[string]any, opts SuiteOptions) *Suite {
	if opts.IndexPrefix == "" {
		opts.IndexPrefix = defaultIndexPrefix
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = defaultHealthTimeout
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	index := opts.IndexPrefix + "-" + uuid.NewString()
	return &Suite{
		store: store,
		body:  body,
		opts:  opts,
		index: index,
		log:   log.With(logger.String("index", index)),
	}
}

// Index returns the name of the suite's index.
func (s *Suite) Index() string {
	return s.index
}

// Store returns the store the suite runs against.
func (s *Suite) Store() Store {
	return s.store
}

// Action appends a step that runs before the refresh barrier.
func (s *Suite) Action(step Step) {
	s.actions = append(s.actions, step)
}

// Assert appends a step that runs after the refresh barrier.
func (s *Suite) Assert(step Step) {
	s.asserts = append(s.asserts, step)
}

// Run creates the index, runs every action in order, refreshes, and runs
// every assertion in order. The first failing action stops the run;
// assertions all run and their failures are joined. The index is deleted on
// the way out unless KeepIndex is set, even when ctx is already done.
func (s *Suite) Run(ctx context.Context) (err error) {
	if createErr := s.store.CreateIndex(ctx, s.index, s.body); createErr != nil {
		return &StepError{Stage: StageCreateIndex, Err: createErr}
	}
	defer func() {
		if cleanupErr := s.cleanup(ctx); cleanupErr != nil {
			err = errors.Join(err, cleanupErr)
		}
	}()

	if waitErr := s.store.WaitForIndex(ctx, s.index, s.opts.HealthTimeout); waitErr != nil {
		return &StepError{Stage: StageWaitIndex, Err: waitErr}
	}

	for i, action := range s.actions {
		if actionErr := action(ctx, s); actionErr != nil {
			return &StepError{Stage: StageAction, Step: i, Err: actionErr}
		}
	}

	if refreshErr := s.store.Refresh(ctx, s.index); refreshErr != nil {
		return &StepError{Stage: StageRefresh, Err: refreshErr}
	}

	if s.opts.SettleDelay > 0 {
		timer := time.NewTimer(s.opts.SettleDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return &StepError{Stage: StageSettle, Err: ctx.Err()}
		case <-timer.C:
		}
	}

	var failures []error
	for i, assertion := range s.asserts {
		if assertErr := assertion(ctx, s); assertErr != nil {
			failures = append(failures, &StepError{Stage: StageAssert, Step: i, Err: assertErr})
		}
	}
	return errors.Join(failures...)
}

func (s *Suite) cleanup(ctx context.Context) error {
	if s.opts.KeepIndex {
		s.log.Info("Keeping contract index")
		return nil
	}

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := s.store.DeleteIndex(cleanupCtx, s.index); err != nil {
		s.log.Warn("Failed to delete contract index", logger.Error(err))
		return &StepError{Stage: StageCleanup, Err: err}
	}
	return nil
}
