package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RepairJob periodically verifies the aggregates and, when AutoFix is set,
// repairs whatever drifted.
type RepairJob struct {
	Verifier *Verifier
	Interval time.Duration
	AutoFix  bool
}

// RunOnce performs one verification pass (and repair when AutoFix is set)
// and returns the number of mismatches found.
func (j *RepairJob) RunOnce(ctx context.Context) (int, error) {
	logger := log.Logger
	if j.Verifier.Log != nil {
		logger = *j.Verifier.Log
	}

	found, err := j.Verifier.Verify(ctx)
	if err != nil {
		return 0, err
	}
	if len(found) == 0 {
		logger.Debug().Msg("aggregates consistent")
		return 0, nil
	}
	for _, m := range found {
		logger.Warn().Str("entity", m.Entity).Str("id", m.ID).Str("field", m.Field).
			Interface("stored", m.Stored).Interface("expected", m.Expected).Msg("aggregate mismatch")
	}
	if !j.AutoFix {
		return len(found), nil
	}
	fixed, err := j.Verifier.Repair(ctx)
	if err != nil {
		return len(found), err
	}
	logger.Info().Int("repaired", len(fixed)).Msg("aggregates repaired")
	return len(found), nil
}

// Run calls RunOnce every Interval until ctx is cancelled. Errors are logged
// and do not stop the loop. A non-positive Interval returns immediately.
func (j *RepairJob) Run(ctx context.Context) {
	if j.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.RunOnce(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("consistency check failed")
			}
		}
	}
}
