package workout

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultHeatmapDays is the window of the volume heatmap.
const DefaultHeatmapDays = 30

//nolint:gochecknoglobals // read-only ramp indexed by intensity.
var intensityRamp = [...]string{"#1f2937", "#14532d", "#166534", "#16a34a", "#22c55e"}

// HeatmapDay is the training volume of one calendar day.
type HeatmapDay struct {
	Date       time.Time // local midnight
	Volume     float64
	Workouts   int
	Categories map[string]float64
	Intensity  int    // 0 on rest days, otherwise 1 to 4 relative to the window's maximum
	Gradient   string // CSS linear-gradient of the category shares, empty without volume
	Legend     string // e.g. "Push 60%, Legs 40%"
}

// RampColor is the single color of the day for displays that cannot draw gradients.
func (d HeatmapDay) RampColor() string {
	return RampColor(d.Intensity)
}

// HeatmapWindow is a run of consecutive days ending today.
type HeatmapWindow struct {
	Days          []HeatmapDay // oldest first
	MaxVolume     float64
	TotalVolume   float64
	TotalWorkouts int
	// Categories lists every category with volume in the window, sorted by name.
	Categories []string
}

// Heatmap buckets history by the local calendar day of completion over the days ending on now's date. Every set
// counts towards volume, completed or not.
func Heatmap(history []Session, resolver CategoryResolver, now time.Time, days int) HeatmapWindow {
	if days <= 0 {
		days = DefaultHeatmapDays
	}
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	window := HeatmapWindow{
		Days:          make([]HeatmapDay, days),
		MaxVolume:     0,
		TotalVolume:   0,
		TotalWorkouts: 0,
		Categories:    []string{},
	}
	byDate := make(map[string]int, days)
	for i := range days {
		date := today.AddDate(0, 0, i-days+1)
		window.Days[i] = HeatmapDay{
			Date:       date,
			Volume:     0,
			Workouts:   0,
			Categories: map[string]float64{},
			Intensity:  0,
			Gradient:   "",
			Legend:     "",
		}
		byDate[date.Format(time.DateOnly)] = i
	}

	for _, s := range history {
		if s.CompletedAt == nil {
			continue
		}
		i, ok := byDate[s.CompletedAt.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		day := &window.Days[i]
		day.Workouts++
		for _, e := range s.Exercises {
			category := resolver.Category(e.Name)
			for _, set := range e.Sets {
				volume := SetVolume(set)
				if volume <= 0 {
					continue
				}
				day.Volume += volume
				day.Categories[category] += volume
			}
		}
	}

	used := map[string]bool{}
	for _, day := range window.Days {
		window.MaxVolume = max(window.MaxVolume, day.Volume)
		window.TotalVolume += day.Volume
		window.TotalWorkouts += day.Workouts
		for category := range day.Categories {
			used[category] = true
		}
	}
	for i := range window.Days {
		day := &window.Days[i]
		day.Intensity = Intensity(day.Volume, window.MaxVolume)
		shares := sortedShares(day.Categories)
		day.Gradient = linearGradient(shares, day.Volume, resolver)
		day.Legend = shareLegend(shares, day.Volume)
	}
	window.Categories = slices.Sorted(maps.Keys(used))
	return window
}

// Intensity buckets volume by its share of maxVolume: 0 without volume, then 1 to 4 at 25% steps.
func Intensity(volume, maxVolume float64) int {
	if volume <= 0 {
		return 0
	}
	if maxVolume <= 0 {
		return 1
	}
	switch pct := volume / maxVolume; {
	case pct >= 0.75: //nolint:mnd // quartiles of the maximum
		return 4
	case pct >= 0.5: //nolint:mnd // quartiles of the maximum
		return 3
	case pct >= 0.25: //nolint:mnd // quartiles of the maximum
		return 2
	default:
		return 1
	}
}

// RampColor maps an intensity to a fixed five step green ramp.
func RampColor(intensity int) string {
	return intensityRamp[min(max(intensity, 0), len(intensityRamp)-1)]
}

type share struct {
	category string
	volume   float64
}

// sortedShares orders categories by descending volume and then by name.
func sortedShares(categories map[string]float64) []share {
	shares := make([]share, 0, len(categories))
	for category, volume := range categories {
		shares = append(shares, share{category: category, volume: volume})
	}
	slices.SortFunc(shares, func(a, b share) int {
		if c := cmp.Compare(b.volume, a.volume); c != 0 {
			return c
		}
		return cmp.Compare(a.category, b.category)
	})
	return shares
}

func linearGradient(shares []share, total float64, resolver CategoryResolver) string {
	if total <= 0 || len(shares) == 0 {
		return ""
	}
	parts := make([]string, 0, len(shares))
	var from float64
	for _, s := range shares {
		to := from + s.volume/total*100 //nolint:mnd // percent
		parts = append(parts, fmt.Sprintf("%s %.1f%% %.1f%%", resolver.Color(s.category), from, to))
		from = to
	}
	return "linear-gradient(to right, " + strings.Join(parts, ", ") + ")"
}

func shareLegend(shares []share, total float64) string {
	if total <= 0 {
		return ""
	}
	parts := make([]string, 0, len(shares))
	for _, s := range shares {
		parts = append(parts, fmt.Sprintf("%s %.0f%%", s.category, s.volume/total*100)) //nolint:mnd // percent
	}
	return strings.Join(parts, ", ")
}

// BreakdownSlice is one category of a Breakdown.
type BreakdownSlice struct {
	Category string
	Color    string
	Volume   float64
	Percent  float64
}

// Breakdown is the completed volume per category over a date range.
type Breakdown struct {
	Slices      []BreakdownSlice // descending by volume, ties by name
	TotalVolume float64
	Workouts    int
}

// CategoryBreakdown sums completed sets of the sessions that started between the local start of start's day and the
// local end of end's day, both inclusive. Sets without reps count their weight once.
func CategoryBreakdown(history []Session, resolver CategoryResolver, start, end time.Time) Breakdown {
	loc := start.Location()
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	end = end.In(loc)
	until := time.Date(end.Year(), end.Month(), end.Day()+1, 0, 0, 0, 0, loc)

	categories := map[string]float64{}
	b := Breakdown{Slices: []BreakdownSlice{}, TotalVolume: 0, Workouts: 0}
	for _, s := range history {
		if s.StartTime.Before(from) || !s.StartTime.Before(until) {
			continue
		}
		b.Workouts++
		for _, e := range s.Exercises {
			category := resolver.Category(e.Name)
			for _, set := range e.Sets {
				if !IsCompleted(set) {
					continue
				}
				volume := set.Actual.Weight * float64(max(set.Actual.Reps, 1))
				categories[category] += volume
				b.TotalVolume += volume
			}
		}
	}

	for _, sh := range sortedShares(categories) {
		pct := 0.0
		if b.TotalVolume > 0 {
			pct = sh.volume / b.TotalVolume * 100 //nolint:mnd // percent
		}
		b.Slices = append(b.Slices, BreakdownSlice{
			Category: sh.category,
			Color:    resolver.Color(sh.category),
			Volume:   sh.volume,
			Percent:  pct,
		})
	}
	return b
}

// Donut returns a CSS conic-gradient with one arc per category, or a flat gray without volume.
func (b Breakdown) Donut() string {
	if b.TotalVolume <= 0 {
		return uncategorizedFallbackHex
	}
	parts := make([]string, 0, len(b.Slices))
	var from float64
	for _, s := range b.Slices {
		to := from + s.Volume/b.TotalVolume*360 //nolint:mnd // degrees
		parts = append(parts, fmt.Sprintf("%s %sdeg %sdeg", s.Color, formatDegrees(from), formatDegrees(to)))
		from = to
	}
	return "conic-gradient(" + strings.Join(parts, ", ") + ")"
}

func formatDegrees(d float64) string {
	return strconv.FormatFloat(math.Round(d*10)/10, 'f', -1, 64) //nolint:mnd // one decimal
}

// Legend returns one line per category, e.g. "Push 62.5% (1.2k kg)".
func (b Breakdown) Legend() []string {
	lines := make([]string, 0, len(b.Slices))
	for _, s := range b.Slices {
		lines = append(lines, fmt.Sprintf("%s %.1f%% (%s kg)", s.Category, s.Percent, FormatVolume(s.Volume)))
	}
	return lines
}

// Overview is the headline of the home screen.
type Overview struct {
	Workouts int
	// TotalSets sums the stored totals of every history entry.
	TotalSets int
	// DaysSinceLast is the number of whole days since the newest entry was completed.
	DaysSinceLast int
}

// QuickStats summarizes history, which is newest first.
func QuickStats(history []Session, now time.Time) Overview {
	o := Overview{Workouts: len(history), TotalSets: 0, DaysSinceLast: 0}
	for _, s := range history {
		o.TotalSets += s.TotalSets
	}
	if len(history) > 0 && history[0].CompletedAt != nil {
		o.DaysSinceLast = max(int(now.Sub(*history[0].CompletedAt)/(24*time.Hour)), 0) //nolint:mnd // hours per day
	}
	return o
}

// ExerciseHistoryEntry is the performance of one exercise in one past session.
type ExerciseHistoryEntry struct {
	SessionID   ID
	CompletedAt time.Time
	Duration    int
	TimeMode    bool
	Sets        []Values
}

// ExerciseHistory lists the sessions that contain the exercise with exactly this name and at least one set,
// oldest first.
func ExerciseHistory(history []Session, name string) []ExerciseHistoryEntry {
	entries := []ExerciseHistoryEntry{}
	for _, s := range history {
		i := slices.IndexFunc(s.Exercises, func(e Exercise) bool { return e.Name == name })
		if i < 0 || len(s.Exercises[i].Sets) == 0 {
			continue
		}
		e := s.Exercises[i]
		completedAt := s.StartTime
		if s.CompletedAt != nil {
			completedAt = *s.CompletedAt
		}
		sets := make([]Values, 0, len(e.Sets))
		for _, set := range e.Sets {
			sets = append(sets, set.Actual)
		}
		entries = append(entries, ExerciseHistoryEntry{
			SessionID:   s.ID,
			CompletedAt: completedAt,
			Duration:    s.Duration,
			TimeMode:    e.TimeMode,
			Sets:        sets,
		})
	}
	slices.SortStableFunc(entries, func(a, b ExerciseHistoryEntry) int {
		return a.CompletedAt.Compare(b.CompletedAt)
	})
	return entries
}

// LastPerformance returns the most recent sets of the named exercise, used to show the previous workout next to the
// current one.
func LastPerformance(history []Session, name string) (ExerciseHistoryEntry, bool) {
	entries := ExerciseHistory(history, name)
	if len(entries) == 0 {
		return ExerciseHistoryEntry{}, false //nolint:exhaustruct // not found
	}
	return entries[len(entries)-1], true
}
