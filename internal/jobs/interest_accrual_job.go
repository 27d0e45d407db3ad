// Package jobs holds the background work scheduled inside the server process.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/ruralpay/ledger/internal/interest"
	"github.com/ruralpay/ledger/internal/lock"
	"github.com/ruralpay/ledger/internal/logger"
	"github.com/ruralpay/ledger/internal/models"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ErrSweepInProgress is returned when another process holds the run lock for the date
var ErrSweepInProgress = errors.New("interest sweep already running for this date")

// Accruer is the part of the interest accrual engine the job drives
type Accruer interface {
	AccrueInterestForAllLoans(ctx context.Context, asOf time.Time) (*models.AccrualSweepResult, error)
	AccrueLoanInterest(ctx context.Context, loanID string, date time.Time) (*models.DailyInterestAccrual, error)
}

type InterestAccrualJob struct {
	accruer  Accruer
	redis    *redis.Client
	cron     *cron.Cron
	schedule string
	lockTTL  time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// NewInterestAccrualJob wires the sweep to the configured schedule. rdb may be
// nil, in which case sweeps run without the cross-process lock.
func NewInterestAccrualJob(accruer Accruer, rdb *redis.Client) *InterestAccrualJob {
	viper.SetDefault("interest.schedule", "0 0 * * *")
	viper.SetDefault("interest.lock_ttl", time.Hour)

	return &InterestAccrualJob{
		accruer:  accruer,
		redis:    rdb,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		schedule: viper.GetString("interest.schedule"),
		lockTTL:  viper.GetDuration("interest.lock_ttl"),
		log:      logger.Log.Named("interest_job"),
		now:      time.Now,
	}
}

// Start registers the daily sweep and starts the scheduler in its own goroutine
func (j *InterestAccrualJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if _, err := j.RunNow(context.Background(), j.now()); err != nil && !errors.Is(err, ErrSweepInProgress) {
			j.log.Error("scheduled interest accrual failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule interest accrual %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.log.Info("interest accrual job scheduled", zap.String("schedule", j.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish or ctx to end
func (j *InterestAccrualJob) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
		j.log.Warn("interest sweep still running at shutdown")
	}
}

// RunNow sweeps every active loan up to asOf
func (j *InterestAccrualJob) RunNow(ctx context.Context, asOf time.Time) (*models.AccrualSweepResult, error) {
	asOf = interest.Day(asOf)
	started := time.Now()

	release, err := j.acquire(ctx, asOf)
	if err != nil {
		return nil, err
	}
	defer release()

	j.log.Info("starting interest accrual", zap.String("as_of", asOf.Format(time.DateOnly)))
	result, err := j.accruer.AccrueInterestForAllLoans(ctx, asOf)
	if err != nil {
		return nil, err
	}

	j.log.Info("interest accrual completed",
		zap.Int("processed", result.Processed),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("duration", time.Since(started)),
	)
	if len(result.Errors) > 0 {
		j.log.Warn("some loans failed to accrue interest", zap.Any("errors", result.Errors))
	}
	return result, nil
}

// RunLoan accrues a single loan for one day, outside the sweep lock
func (j *InterestAccrualJob) RunLoan(ctx context.Context, loanID string, date time.Time) (*models.DailyInterestAccrual, error) {
	return j.accruer.AccrueLoanInterest(ctx, loanID, date)
}

func (j *InterestAccrualJob) acquire(ctx context.Context, asOf time.Time) (func(), error) {
	if j.redis == nil {
		return func() {}, nil
	}

	l := lock.New(j.redis, lock.AccrualKey(asOf), j.lockTTL)
	err := l.TryAcquire(ctx)
	switch {
	case errors.Is(err, lock.ErrNotAcquired):
		j.log.Info("interest sweep skipped, lock held elsewhere", zap.String("key", l.Key()))
		return nil, ErrSweepInProgress
	case err != nil:
		// accrual is idempotent per day, so losing Redis only costs duplicate work
		j.log.Warn("run lock unavailable, sweeping without it", zap.Error(err))
		return func() {}, nil
	}

	return func() {
		if err := l.Release(context.WithoutCancel(ctx)); err != nil {
			j.log.Warn("release run lock", zap.String("key", l.Key()), zap.Error(err))
		}
	}, nil
}
