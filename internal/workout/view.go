package workout

import "github.com/myrjola/gymlog/internal/ptr"

// newView builds the default presentation of s: accordion mode with only the first exercise expanded.
func newView(s Session, showPrevious bool) SessionView {
	v := SessionView{
		SessionID:     s.ID,
		AccordionMode: true,
		Exercises:     make(map[ID]ExerciseView, len(s.Exercises)),
	}
	for i, e := range s.Exercises {
		v.Exercises[e.ID] = ExerciseView{
			Collapsed:     i > 0,
			DetailsHidden: false,
			ShowPrevious:  showPrevious,
			SelectedSet:   nil,
		}
	}
	return v
}

// reconcile repairs v so that it describes s. A view of another session is rebuilt from scratch. Otherwise missing
// exercises are added, stale ones dropped, out of range selections clamped and accordion exclusivity restored.
// It reports whether v changed.
func (v *SessionView) reconcile(s Session) bool {
	if v.SessionID != s.ID || v.Exercises == nil {
		*v = newView(s, false)
		return true
	}

	changed := false
	known := make(map[ID]bool, len(s.Exercises))
	expanded := false
	for _, e := range s.Exercises {
		known[e.ID] = true
		ev, ok := v.Exercises[e.ID]
		if !ok {
			ev = ExerciseView{Collapsed: v.AccordionMode, DetailsHidden: false, ShowPrevious: false, SelectedSet: nil}
			changed = true
		}
		if sel := ev.SelectedSet; sel != nil && (*sel < 0 || *sel >= len(e.Sets)) {
			ev.SelectedSet = clampSelection(*sel, len(e.Sets))
			changed = true
		}
		if v.AccordionMode && !ev.Collapsed {
			if expanded {
				ev.Collapsed = true
				changed = true
			}
			expanded = true
		}
		v.Exercises[e.ID] = ev
	}
	for id := range v.Exercises {
		if !known[id] {
			delete(v.Exercises, id)
			changed = true
		}
	}
	return changed
}

func clampSelection(sel, sets int) *int {
	if sets == 0 {
		return nil
	}
	return ptr.Ref(min(max(sel, 0), sets-1))
}

func (v *SessionView) anyExpanded() bool {
	for _, ev := range v.Exercises {
		if !ev.Collapsed {
			return true
		}
	}
	return false
}

func (v *SessionView) setCollapsedAll(collapsed bool) {
	for id, ev := range v.Exercises {
		ev.Collapsed = collapsed
		v.Exercises[id] = ev
	}
}

// expandOnly expands id and collapses every other exercise.
func (v *SessionView) expandOnly(id ID) {
	v.setCollapsedAll(true)
	v.update(id, func(ev *ExerciseView) { ev.Collapsed = false })
}

func (v *SessionView) update(id ID, fn func(ev *ExerciseView)) {
	ev := v.Exercises[id]
	fn(&ev)
	v.Exercises[id] = ev
}
