package workout

import (
	"fmt"
	"slices"
	"time"

	"github.com/myrjola/gymlog/internal/ptr"
)

// ActiveSession is the workout in progress together with its presentation state.
type ActiveSession struct {
	Session Session
	View    SessionView
}

// The methods below implement the session state machine without touching storage. They return ErrNotFound for
// stale exercise IDs and set indexes, and report whether anything changed so that callers can skip the write.

func newSession(id ID, start time.Time) Session {
	return Session{
		ID:             id,
		StartTime:      start,
		EndTime:        nil,
		CompletedAt:    nil,
		Duration:       0,
		TotalSets:      0,
		TotalExercises: 0,
		Exercises:      []Exercise{},
	}
}

// sessionFromTemplate starts a new session repeating the exercises of a past one. The template's actual values
// become both the plan and the starting point.
func sessionFromTemplate(tmpl Session, id ID, start time.Time, newID func() ID) Session {
	s := newSession(id, start)
	for _, e := range tmpl.Exercises {
		sets := make([]Set, 0, len(e.Sets))
		for _, set := range e.Sets {
			sets = append(sets, Set{Completed: false, Planned: set.Actual, Actual: set.Actual})
		}
		s.Exercises = append(s.Exercises, Exercise{ID: newID(), Name: e.Name, TimeMode: e.TimeMode, Sets: sets})
	}
	return s
}

func (a *ActiveSession) exercise(id ID) (*Exercise, error) {
	i := a.Session.exerciseIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("exercise %s: %w", id, ErrNotFound)
	}
	return &a.Session.Exercises[i], nil
}

func (a *ActiveSession) set(exerciseID ID, index int) (*Set, error) {
	e, err := a.exercise(exerciseID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(e.Sets) {
		return nil, fmt.Errorf("set %d of exercise %s: %w", index, exerciseID, ErrNotFound)
	}
	return &e.Sets[index], nil
}

func (a *ActiveSession) addExercise(id ID, name string) Exercise {
	e := Exercise{ID: id, Name: name, TimeMode: false, Sets: []Set{}}
	if a.View.AccordionMode {
		a.View.setCollapsedAll(true)
	}
	a.Session.Exercises = append(a.Session.Exercises, e)
	a.View.Exercises[id] = ExerciseView{Collapsed: false, DetailsHidden: false, ShowPrevious: false, SelectedSet: nil}
	return e
}

func (a *ActiveSession) deleteExercise(id ID) error {
	i := a.Session.exerciseIndex(id)
	if i < 0 {
		return fmt.Errorf("exercise %s: %w", id, ErrNotFound)
	}
	a.Session.Exercises = slices.Delete(a.Session.Exercises, i, i+1)
	delete(a.View.Exercises, id)
	return nil
}

// moveExercise swaps the exercise with its neighbour. Moving past either end is a no-op.
func (a *ActiveSession) moveExercise(id ID, dir Direction) (bool, error) {
	i := a.Session.exerciseIndex(id)
	if i < 0 {
		return false, fmt.Errorf("exercise %s: %w", id, ErrNotFound)
	}
	j := i + 1
	if dir == Up {
		j = i - 1
	}
	if j < 0 || j >= len(a.Session.Exercises) {
		return false, nil
	}
	a.Session.Exercises[i], a.Session.Exercises[j] = a.Session.Exercises[j], a.Session.Exercises[i]
	return true, nil
}

func (a *ActiveSession) renameExercise(id ID, name string) (bool, error) {
	e, err := a.exercise(id)
	if err != nil {
		return false, err
	}
	if e.Name == name {
		return false, nil
	}
	e.Name = name
	return true, nil
}

// addSet appends a set that starts from the previous set's actual values and returns its index.
func (a *ActiveSession) addSet(exerciseID ID) (int, error) {
	e, err := a.exercise(exerciseID)
	if err != nil {
		return 0, err
	}
	var prev Values
	if n := len(e.Sets); n > 0 {
		prev = e.Sets[n-1].Actual
	}
	e.Sets = append(e.Sets, Set{Completed: false, Planned: prev, Actual: prev})

	if a.View.AccordionMode {
		a.View.expandOnly(exerciseID)
	}
	a.View.update(exerciseID, func(ev *ExerciseView) {
		if ev.SelectedSet == nil {
			ev.SelectedSet = new(int)
		}
	})
	return len(e.Sets) - 1, nil
}

// deleteSet removes a set. A selection after the removed set moves with it, and a selection past the end moves to
// the new last set or to none when no sets remain.
func (a *ActiveSession) deleteSet(exerciseID ID, index int) error {
	if _, err := a.set(exerciseID, index); err != nil {
		return err
	}
	e, _ := a.exercise(exerciseID)
	e.Sets = slices.Delete(e.Sets, index, index+1)
	a.View.update(exerciseID, func(ev *ExerciseView) {
		if ev.SelectedSet == nil {
			return
		}
		sel := *ev.SelectedSet
		if sel > index {
			sel--
		}
		ev.SelectedSet = clampSelection(sel, len(e.Sets))
	})
	return nil
}

func (a *ActiveSession) selectSet(exerciseID ID, index int) (bool, error) {
	if _, err := a.set(exerciseID, index); err != nil {
		return false, err
	}
	ev := a.View.Exercises[exerciseID]
	if ev.SelectedSet != nil && *ev.SelectedSet == index {
		return false, nil
	}
	a.View.update(exerciseID, func(ev *ExerciseView) { ev.SelectedSet = &index })
	return true, nil
}

// updateSetField writes planned and actual in lockstep. Completed sets are locked.
func (a *ActiveSession) updateSetField(exerciseID ID, index int, field Field, value float64) (bool, error) {
	s, err := a.set(exerciseID, index)
	if err != nil || s.Completed {
		return false, err
	}
	s.Planned = s.Planned.with(field, value)
	s.Actual = s.Actual.with(field, value)
	return true, nil
}

// updateSetValue writes one column only. Completed sets are locked.
func (a *ActiveSession) updateSetValue(exerciseID ID, index int, column Column, field Field, value float64) (bool,
	error) {
	s, err := a.set(exerciseID, index)
	if err != nil || s.Completed {
		return false, err
	}
	switch column {
	case ColumnPlanned:
		s.Planned = s.Planned.with(field, value)
	case ColumnActual:
		s.Actual = s.Actual.with(field, value)
	}
	return true, nil
}

func (a *ActiveSession) toggleSetCompletion(exerciseID ID, index int) error {
	s, err := a.set(exerciseID, index)
	if err != nil {
		return err
	}
	s.Completed = !s.Completed
	return nil
}

// toggleCollapse opens or closes an exercise. Opening under accordion mode closes every other exercise.
func (a *ActiveSession) toggleCollapse(exerciseID ID) error {
	if _, err := a.exercise(exerciseID); err != nil {
		return err
	}
	if a.View.Exercises[exerciseID].Collapsed && a.View.AccordionMode {
		a.View.expandOnly(exerciseID)
		return nil
	}
	a.View.update(exerciseID, func(ev *ExerciseView) { ev.Collapsed = !ev.Collapsed })
	return nil
}

func (a *ActiveSession) toggleDetails(exerciseID ID) error {
	if _, err := a.exercise(exerciseID); err != nil {
		return err
	}
	a.View.update(exerciseID, func(ev *ExerciseView) { ev.DetailsHidden = !ev.DetailsHidden })
	return nil
}

func (a *ActiveSession) toggleShowPrevious(exerciseID ID) error {
	if _, err := a.exercise(exerciseID); err != nil {
		return err
	}
	a.View.update(exerciseID, func(ev *ExerciseView) { ev.ShowPrevious = !ev.ShowPrevious })
	return nil
}

func (a *ActiveSession) toggleTimeMode(exerciseID ID) error {
	e, err := a.exercise(exerciseID)
	if err != nil {
		return err
	}
	e.TimeMode = !e.TimeMode
	return nil
}

// toggleAll collapses everything and turns accordion mode on when anything is expanded. Otherwise it expands
// everything and turns accordion mode off.
func (a *ActiveSession) toggleAll() {
	if a.View.anyExpanded() {
		a.View.setCollapsedAll(true)
		a.View.AccordionMode = true
		return
	}
	a.View.setCollapsedAll(false)
	a.View.AccordionMode = false
}

// complete turns the session into a history entry.
func (a *ActiveSession) complete(now time.Time) (Session, error) {
	if len(a.Session.Exercises) == 0 {
		return Session{}, ErrEmptySession
	}
	entry := a.Session
	entry.EndTime = ptr.Ref(now)
	entry.CompletedAt = ptr.Ref(now)
	entry.Duration = max(int(now.Sub(entry.StartTime)/time.Second), 0)
	entry.TotalSets = entry.countSets()
	entry.TotalExercises = len(entry.Exercises)
	return entry, nil
}

// prependHistory puts entry first and evicts the oldest entries beyond the cap.
func prependHistory(history []Session, entry Session) []Session {
	history = append([]Session{entry}, history...)
	if len(history) > maxHistory {
		history = history[:maxHistory]
	}
	return history
}
