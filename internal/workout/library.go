package workout

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/myrjola/gymlog/internal/ptr"
)

// Library is the user's exercise catalogue. Entries are unique by normalized name.
type Library []LibraryEntry

// NormalizeName reduces name to lowercase letters and digits, so that "Pull-ups" and "pullups" collide.
func NormalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, name)
}

// FindByName looks up an entry by case-insensitive exact name.
func (l Library) FindByName(name string) (LibraryEntry, bool) {
	if i := l.indexByName(name); i >= 0 {
		return l[i], true
	}
	return LibraryEntry{}, false //nolint:exhaustruct // not found
}

func (l Library) indexByName(name string) int {
	name = strings.TrimSpace(name)
	return slices.IndexFunc(l, func(e LibraryEntry) bool { return strings.EqualFold(e.Name, name) })
}

func (l Library) indexByKey(name string, except ID) int {
	key := NormalizeName(name)
	return slices.IndexFunc(l, func(e LibraryEntry) bool { return e.ID != except && NormalizeName(e.Name) == key })
}

func (l Library) indexByID(id ID) int {
	return slices.IndexFunc(l, func(e LibraryEntry) bool { return e.ID == id })
}

// RecordUsage increments the usage of the named entry and reports whether it exists.
func (l Library) RecordUsage(name string, now time.Time) bool {
	i := l.indexByName(name)
	if i < 0 {
		return false
	}
	l[i].UsageCount++
	l[i].LastUsed = ptr.Ref(now)
	return true
}

// Add appends a new entry unless one with the same normalized name exists, in which case the existing entry is
// returned and added is false.
func (l *Library) Add(name, category string, now time.Time) (LibraryEntry, bool) {
	name = strings.TrimSpace(name)
	if i := l.indexByKey(name, ""); i >= 0 {
		return (*l)[i], false
	}
	entry := LibraryEntry{
		ID:         NewID(),
		Name:       name,
		Category:   strings.TrimSpace(category),
		CreatedAt:  now,
		LastUsed:   nil,
		UsageCount: 0,
	}
	*l = append(*l, entry)
	return entry, true
}

// Update renames and recategorizes an entry. The new name must not collide with another entry.
func (l Library) Update(id ID, name, category string) error {
	name = strings.TrimSpace(name)
	if NormalizeName(name) == "" {
		return fmt.Errorf("%w: exercise name must contain letters or digits", ErrValidation)
	}
	i := l.indexByID(id)
	if i < 0 {
		return fmt.Errorf("library entry %s: %w", id, ErrNotFound)
	}
	if j := l.indexByKey(name, id); j >= 0 {
		return fmt.Errorf("%w: exercise %q already exists", ErrValidation, l[j].Name)
	}
	l[i].Name = name
	l[i].Category = strings.TrimSpace(category)
	return nil
}

// Remove deletes the entry with id and reports whether it existed.
func (l *Library) Remove(id ID) bool {
	i := l.indexByID(id)
	if i < 0 {
		return false
	}
	*l = slices.Delete(*l, i, i+1)
	return true
}

// Suggest returns up to limit entries whose name contains query, most used first. Equal usage ranks the most
// recently used first with never-used entries last, and remaining ties sort by name. A limit of zero or less
// returns every match.
func (l Library) Suggest(query string, limit int) []LibraryEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	matches := make([]LibraryEntry, 0, len(l))
	for _, e := range l {
		if strings.Contains(strings.ToLower(e.Name), query) {
			matches = append(matches, e)
		}
	}
	slices.SortStableFunc(matches, compareSuggestions)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func compareSuggestions(a, b LibraryEntry) int {
	if c := cmp.Compare(b.UsageCount, a.UsageCount); c != 0 {
		return c
	}
	switch {
	case a.LastUsed != nil && b.LastUsed != nil:
		if c := b.LastUsed.Compare(*a.LastUsed); c != 0 {
			return c
		}
	case a.LastUsed != nil:
		return -1
	case b.LastUsed != nil:
		return 1
	}
	return cmp.Compare(a.Name, b.Name)
}

// Dedupe merges entries with the same normalized name. The first entry wins, usage counts are summed and the latest
// lastUsed is kept. Entries without a usable name are dropped.
func Dedupe(entries []LibraryEntry) Library {
	out := make(Library, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		key := NormalizeName(e.Name)
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, e)
			continue
		}
		kept := &out[i]
		kept.UsageCount += e.UsageCount
		if e.LastUsed != nil && (kept.LastUsed == nil || e.LastUsed.After(*kept.LastUsed)) {
			kept.LastUsed = ptr.Ref(*e.LastUsed)
		}
		if kept.Category == "" {
			kept.Category = e.Category
		}
	}
	return out
}

// PatchLibrary adds the suggested exercises missing from existing. Categories not in the configuration become
// Uncategorized. It returns nil and false when nothing was added.
func PatchLibrary(existing Library, suggested []LibraryEntry, categories Categories, now time.Time) (Library, bool) {
	patched := slices.Clone(existing)
	added := false
	for _, s := range suggested {
		if NormalizeName(s.Name) == "" {
			continue
		}
		category := CategoryUncategorized
		if c, ok := categories.Find(s.Category); ok {
			category = c.Name
		}
		if _, ok := patched.Add(s.Name, category, now); ok {
			added = true
		}
	}
	if !added {
		return nil, false
	}
	return patched, true
}

// renameCategory points every entry of category from to category to.
func (l Library) renameCategory(from, to string) {
	for i := range l {
		if strings.EqualFold(l[i].Category, from) {
			l[i].Category = to
		}
	}
}
