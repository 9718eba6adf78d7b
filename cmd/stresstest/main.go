// Command stresstest seeds a gymlog database with months of training history and then runs concurrent reads and
// writes against it.
//
// Usage: stresstest [database-path]
//
// Without a path an in-memory database is used. Point it at a copy of a real database to see how the analytics
// behave on a full history.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync/atomic"
	"time"

	"github.com/myrjola/gymlog/internal/errors"
	"github.com/myrjola/gymlog/internal/logging"
	"github.com/myrjola/gymlog/internal/sqlite"
	"github.com/myrjola/gymlog/internal/workout"
	"golang.org/x/sync/errgroup"
)

const (
	maxArgsCount            = 2
	workoutHistoryWeeks     = 26 // 6 months of training
	daysPerWeek             = 7
	sessionLength           = 70 * time.Minute
	setsPerExercise         = 3
	baseWeight              = 40.0
	weightRange             = 20
	weeklyProgressionKg     = 1.25
	baseReps                = 6
	repsRange               = 6
	skippedSetChance        = 0.1
	concurrentOperations    = 400
	maxConcurrentOperations = 20
	operationTimeout        = 10 * time.Second
	successRateThreshold    = 95.0
	percentageMultiplier    = 100
)

// program rotates through three training days a week.
//
//nolint:gochecknoglobals // read-only training plan.
var program = [][]string{
	{"Bench Press", "Overhead Press", "Dips"},
	{"Deadlift", "Pull Ups", "Barbell Row"},
	{"Squats", "Romanian Deadlift", "Plank"},
}

// trainingDays are the weekdays, counted from the first day of the week, that have a session.
//
//nolint:gochecknoglobals // read-only training plan.
var trainingDays = []int{0, 2, 4}

// clock lets the seeding phase backdate sessions.
type clock struct {
	now atomic.Pointer[time.Time]
}

func (c *clock) Now() time.Time {
	return *c.now.Load()
}

func (c *clock) Set(t time.Time) {
	c.now.Store(&t)
}

func main() {
	logger, closer := logging.NewLogger(os.Stderr, slog.LevelInfo, "")
	defer func() {
		_ = closer.Close()
	}()
	ctx := context.Background()
	if err := run(ctx, logger, os.Args); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "stress test failed", errors.SlogError(err))
		_ = closer.Close()
		os.Exit(1) //nolint:gocritic // closer is closed above.
	}
}

func run(ctx context.Context, logger *slog.Logger, args []string) error {
	if len(args) > maxArgsCount {
		return errors.New("usage: stresstest [database-path]")
	}
	url := ":memory:"
	if len(args) == maxArgsCount {
		url = args[1]
	}

	db, err := sqlite.NewDatabase(ctx, url, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", url))
	}
	defer db.Close()

	c := &clock{now: atomic.Pointer[time.Time]{}}
	c.Set(time.Now())
	service := workout.NewService(db, logger, workout.WithClock(c.Now))

	start := time.Now()
	sessions, err := seedHistory(ctx, service, c)
	if err != nil {
		return err
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "seeded history",
		slog.Int("sessions", sessions),
		slog.Duration("took", time.Since(start)))

	c.Set(time.Now())
	start = time.Now()
	succeeded, err := hammer(ctx, service)
	if err != nil {
		return err
	}
	rate := float64(succeeded) / concurrentOperations * percentageMultiplier
	logger.LogAttrs(ctx, slog.LevelInfo, "concurrent operations finished",
		slog.Int("operations", concurrentOperations),
		slog.Int64("succeeded", succeeded),
		slog.Float64("successRate", rate),
		slog.Duration("took", time.Since(start)))
	if rate < successRateThreshold {
		return errors.New("success rate below threshold", slog.Float64("successRate", rate))
	}

	overview, err := service.QuickStats(ctx)
	if err != nil {
		return errors.Wrap(err, "quick stats")
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "history",
		slog.Int("workouts", overview.Workouts),
		slog.Int("sets", overview.TotalSets))
	return nil
}

// seedHistory logs the training program for the past weeks with slowly increasing weights.
func seedHistory(ctx context.Context, service *workout.Service, c *clock) (int, error) {
	weekStart := time.Now().AddDate(0, 0, -daysPerWeek*workoutHistoryWeeks).Truncate(24 * time.Hour) //nolint:mnd // day
	sessions := 0
	for week := range workoutHistoryWeeks {
		for i, day := range trainingDays {
			c.Set(weekStart.AddDate(0, 0, week*daysPerWeek+day).Add(18 * time.Hour)) //nolint:mnd // evening
			progression := float64(week) * weeklyProgressionKg
			if err := logSession(ctx, service, program[i], progression); err != nil {
				return sessions, errors.Wrap(err, "log session", slog.Int("week", week), slog.Int("day", day))
			}
			c.Set(c.Now().Add(sessionLength))
			if _, err := service.CompleteSession(ctx); err != nil {
				return sessions, errors.Wrap(err, "complete session", slog.Int("week", week))
			}
			sessions++
		}
	}
	return sessions, nil
}

// logSession starts a workout and records every set of exercises. Most sets are completed.
func logSession(ctx context.Context, service *workout.Service, exercises []string, progression float64) error {
	if _, err := service.StartSession(ctx); err != nil {
		return errors.Wrap(err, "start session")
	}
	for _, name := range exercises {
		e, err := service.AddExercise(ctx, name)
		if err != nil {
			return errors.Wrap(err, "add exercise", slog.String("exercise", name))
		}
		weight := baseWeight + float64(rand.IntN(weightRange)) + progression //nolint:gosec // test data
		for set := range setsPerExercise {
			if err = service.AddSet(ctx, e.ID); err != nil {
				return errors.Wrap(err, "add set")
			}
			reps := float64(baseReps + rand.IntN(repsRange)) //nolint:gosec // test data
			if err = service.UpdateSetField(ctx, e.ID, set, workout.FieldWeight, weight); err != nil {
				return errors.Wrap(err, "update weight")
			}
			if err = service.UpdateSetField(ctx, e.ID, set, workout.FieldReps, reps); err != nil {
				return errors.Wrap(err, "update reps")
			}
			if rand.Float64() < skippedSetChance { //nolint:gosec // test data
				continue
			}
			if err = service.ToggleSetCompletion(ctx, e.ID, set); err != nil {
				return errors.Wrap(err, "complete set")
			}
		}
	}
	return nil
}

// hammer runs a mix of analytics reads and workout edits concurrently and counts the successful ones.
func hammer(ctx context.Context, service *workout.Service) (int64, error) {
	if _, err := service.StartSession(ctx); err != nil {
		return 0, errors.Wrap(err, "start session")
	}
	e, err := service.AddExercise(ctx, "Bench Press")
	if err != nil {
		return 0, errors.Wrap(err, "add exercise")
	}
	for range setsPerExercise {
		if err = service.AddSet(ctx, e.ID); err != nil {
			return 0, errors.Wrap(err, "add set")
		}
	}

	operations := []func(context.Context) error{
		func(ctx context.Context) error {
			_, err := service.Heatmap(ctx, workout.DefaultHeatmapDays, time.Local)
			return err //nolint:wrapcheck // counted only
		},
		func(ctx context.Context) error {
			now := time.Now()
			_, err := service.CategoryBreakdown(ctx, now.AddDate(0, -1, 0), now)
			return err //nolint:wrapcheck // counted only
		},
		func(ctx context.Context) error {
			_, err := service.ExerciseHistory(ctx, "Squats")
			return err //nolint:wrapcheck // counted only
		},
		func(ctx context.Context) error {
			_, err := service.Export(ctx)
			return err //nolint:wrapcheck // counted only
		},
		func(ctx context.Context) error {
			return service.ToggleSetCompletion(ctx, e.ID, rand.IntN(setsPerExercise)) //nolint:gosec,wrapcheck // test data
		},
		func(ctx context.Context) error {
			//nolint:gosec,wrapcheck // test data
			return service.UpdateSetField(ctx, e.ID, rand.IntN(setsPerExercise), workout.FieldReps,
				float64(baseReps+rand.IntN(repsRange)))
		},
	}

	var (
		succeeded atomic.Int64
		g         errgroup.Group
	)
	g.SetLimit(maxConcurrentOperations)
	for i := range concurrentOperations {
		op := operations[i%len(operations)]
		g.Go(func() error {
			opCtx, cancel := context.WithTimeout(ctx, operationTimeout)
			defer cancel()
			if opErr := op(opCtx); opErr != nil {
				return fmt.Errorf("operation %d: %w", i, opErr)
			}
			succeeded.Add(1)
			return nil
		})
	}
	err = g.Wait()
	if discardErr := service.DiscardSession(ctx); discardErr != nil {
		return succeeded.Load(), errors.Wrap(discardErr, "discard session")
	}
	if err != nil && succeeded.Load() == 0 {
		return 0, errors.Wrap(err, "every operation failed")
	}
	return succeeded.Load(), nil
}
