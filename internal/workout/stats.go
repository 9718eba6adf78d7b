package workout

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// SetVolume is actual weight times actual reps. Unweighted timed sets have no volume.
func SetVolume(s Set) float64 {
	return s.Actual.Weight * float64(s.Actual.Reps)
}

// IsCompleted reports whether the set was completed. Legacy sets are resolved by the decoder, see ResolveCompleted.
func IsCompleted(s Set) bool {
	return s.Completed
}

// HeaviestSet is the set with the highest actual weight in a session.
type HeaviestSet struct {
	Exercise string
	Weight   float64
	Reps     int
}

// ExerciseVolume is the summed volume of one exercise.
type ExerciseVolume struct {
	Exercise string
	Volume   float64
}

// Stats summarizes a session.
type Stats struct {
	TotalSets      int
	CompletedSets  int
	TotalVolume    float64
	CompletionRate int // percent, 0 without sets
	// HeaviestSet is nil when no set carries weight. Ties keep the first set encountered.
	HeaviestSet *HeaviestSet
	// MostVolume is nil when no exercise has volume.
	MostVolume *ExerciseVolume
	// PerfectExercises lists exercises with at least one set where every set is completed.
	PerfectExercises []string
}

// WorkoutStats computes the session summary shown after completing a workout and in history.
func WorkoutStats(s Session) Stats {
	stats := Stats{
		TotalSets:        0,
		CompletedSets:    0,
		TotalVolume:      0,
		CompletionRate:   0,
		HeaviestSet:      nil,
		MostVolume:       nil,
		PerfectExercises: []string{},
	}
	for _, e := range s.Exercises {
		var exerciseVolume float64
		perfect := len(e.Sets) > 0
		for _, set := range e.Sets {
			stats.TotalSets++
			volume := SetVolume(set)
			stats.TotalVolume += volume
			exerciseVolume += volume
			if IsCompleted(set) {
				stats.CompletedSets++
			} else {
				perfect = false
			}
			if set.Actual.Weight > 0 && (stats.HeaviestSet == nil || set.Actual.Weight > stats.HeaviestSet.Weight) {
				stats.HeaviestSet = &HeaviestSet{Exercise: e.Name, Weight: set.Actual.Weight, Reps: set.Actual.Reps}
			}
		}
		if exerciseVolume > 0 && (stats.MostVolume == nil || exerciseVolume > stats.MostVolume.Volume) {
			stats.MostVolume = &ExerciseVolume{Exercise: e.Name, Volume: exerciseVolume}
		}
		if perfect {
			stats.PerfectExercises = append(stats.PerfectExercises, e.Name)
		}
	}
	stats.CompletionRate = percent(stats.CompletedSets, stats.TotalSets)
	return stats
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100)) //nolint:mnd // percent
}

// Highlights returns up to three callouts for a completed session.
func Highlights(stats Stats) []string {
	highlights := make([]string, 0, 3) //nolint:mnd // at most one per kind
	if h := stats.HeaviestSet; h != nil {
		highlights = append(highlights,
			fmt.Sprintf("Heaviest set: %s - %s × %d", h.Exercise, FormatWeight(h.Weight), h.Reps))
	}
	if mv := stats.MostVolume; mv != nil {
		highlights = append(highlights,
			fmt.Sprintf("Most volume: %s - %s kg", mv.Exercise, FormatVolume(mv.Volume)))
	}
	if n := len(stats.PerfectExercises); n > 0 {
		text := "All sets completed: " + stats.PerfectExercises[0]
		if n > 1 {
			text += fmt.Sprintf(" +%d more", n-1)
		}
		highlights = append(highlights, text)
	}
	return highlights
}

// ExerciseSummary summarizes one exercise of a session.
type ExerciseSummary struct {
	TotalSets     int
	CompletedSets int
	AllCompleted  bool
	AvgWeight     float64 // rounded to whole kilograms
	AvgReps       int
	AvgTime       int
	Volume        float64
	Summary       string
}

// ExerciseStats summarizes an exercise. Averages are taken over all sets, including incomplete ones.
func ExerciseStats(e Exercise) ExerciseSummary {
	sum := ExerciseSummary{
		TotalSets:     len(e.Sets),
		CompletedSets: 0,
		AllCompleted:  false,
		AvgWeight:     0,
		AvgReps:       0,
		AvgTime:       0,
		Volume:        0,
		Summary:       "",
	}
	var weight float64
	var reps, secs int
	for _, set := range e.Sets {
		if IsCompleted(set) {
			sum.CompletedSets++
		}
		sum.Volume += SetVolume(set)
		weight += set.Actual.Weight
		reps += set.Actual.Reps
		secs += set.Actual.Time
	}
	if n := float64(len(e.Sets)); n > 0 {
		sum.AvgWeight = math.Round(weight / n)
		sum.AvgReps = int(math.Round(float64(reps) / n))
		sum.AvgTime = int(math.Round(float64(secs) / n))
	}
	sum.AllCompleted = sum.TotalSets > 0 && sum.CompletedSets == sum.TotalSets

	if e.TimeMode {
		sum.Summary = fmt.Sprintf("%d/%d sets • %ds avg", sum.CompletedSets, sum.TotalSets, sum.AvgTime)
	} else {
		sum.Summary = fmt.Sprintf("%d/%d sets • %s × %d avg • %s kg", sum.CompletedSets, sum.TotalSets,
			FormatWeight(sum.AvgWeight), sum.AvgReps, FormatVolume(sum.Volume))
	}
	return sum
}

// Outcome classifies a set against its plan.
type Outcome string

const (
	OutcomeMissed   Outcome = "missed"
	OutcomeExceeded Outcome = "exceeded"
	OutcomeMatched  Outcome = "matched"
	OutcomePartial  Outcome = "partial"
)

const maxOutcomePercent = 150

// SetComparison is a planned-versus-actual view of one set. It is informational and never decides completion.
type SetComparison struct {
	Outcome Outcome
	Percent int // of target, capped at 150
}

// ClassifySet compares actual to planned. Weighted sets compare volume, unweighted sets compare reps, and sets with
// neither compare time.
func ClassifySet(s Set) SetComparison {
	var planned, actual float64
	switch {
	case s.Planned.Weight > 0 || s.Actual.Weight > 0:
		planned = s.Planned.Weight * float64(s.Planned.Reps)
		actual = SetVolume(s)
	case s.Planned.Reps > 0 || s.Actual.Reps > 0:
		planned, actual = float64(s.Planned.Reps), float64(s.Actual.Reps)
	default:
		planned, actual = float64(s.Planned.Time), float64(s.Actual.Time)
	}

	switch {
	case actual <= 0:
		return SetComparison{Outcome: OutcomeMissed, Percent: 0}
	case planned <= 0:
		return SetComparison{Outcome: OutcomeExceeded, Percent: maxOutcomePercent}
	case actual == planned:
		return SetComparison{Outcome: OutcomeMatched, Percent: 100} //nolint:mnd // percent
	}
	pct := int(math.Round(actual / planned * 100)) //nolint:mnd // percent
	if actual > planned {
		return SetComparison{Outcome: OutcomeExceeded, Percent: min(pct, maxOutcomePercent)}
	}
	return SetComparison{Outcome: OutcomePartial, Percent: pct}
}

// Badge grades a completion rate.
type Badge string

const (
	BadgeExcellent Badge = "excellent"
	BadgeGood      Badge = "good"
	BadgeNeedsWork Badge = "needs-work"
)

// PerformanceBadge grades rate: excellent from 90, good from 70.
func PerformanceBadge(rate int) Badge {
	switch {
	case rate >= 90: //nolint:mnd // grade boundary
		return BadgeExcellent
	case rate >= 70: //nolint:mnd // grade boundary
		return BadgeGood
	default:
		return BadgeNeedsWork
	}
}

func (b Badge) Label() string {
	switch b {
	case BadgeExcellent:
		return "Excellent"
	case BadgeGood:
		return "Good"
	case BadgeNeedsWork:
		return "Needs work"
	}
	return string(b)
}

// FormatVolume renders thousands with one decimal, e.g. 1.5k, and smaller volumes as whole numbers.
func FormatVolume(v float64) string {
	if v >= 1000 { //nolint:mnd // thousands
		return fmt.Sprintf("%.1fk", v/1000) //nolint:mnd // thousands
	}
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

// FormatWeight renders kilograms without trailing zeros.
func FormatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64) + "kg"
}

// FormatDuration renders seconds as H:MM:SS, or M:SS below one hour.
func FormatDuration(seconds int) string {
	seconds = max(seconds, 0)
	h, m, s := seconds/3600, seconds%3600/60, seconds%60 //nolint:mnd // seconds per hour and minute
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatLastUsed renders how long ago an exercise was used in coarse buckets.
func FormatLastUsed(lastUsed *time.Time, now time.Time) string {
	if lastUsed == nil {
		return "Never"
	}
	d := now.Sub(*lastUsed)
	if d < 0 {
		d = -d
	}
	days := int(d / (24 * time.Hour)) //nolint:mnd // hours per day
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7: //nolint:mnd // week
		return fmt.Sprintf("%dd ago", days)
	case days < 30: //nolint:mnd // month
		return fmt.Sprintf("%dw ago", days/7) //nolint:mnd // week
	case days < 365: //nolint:mnd // year
		return fmt.Sprintf("%dmo ago", days/30) //nolint:mnd // month
	default:
		return fmt.Sprintf("%dy ago", days/365) //nolint:mnd // year
	}
}
