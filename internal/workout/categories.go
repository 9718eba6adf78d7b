package workout

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Categories is the user's category configuration.
type Categories []Category

//nolint:gochecknoglobals // compiled once.
var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Find looks up a category by case-insensitive name.
func (c Categories) Find(name string) (Category, bool) {
	if i := c.indexByName(name); i >= 0 {
		return c[i], true
	}
	return Category{}, false //nolint:exhaustruct // not found
}

func (c Categories) indexByName(name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1
	}
	return slices.IndexFunc(c, func(cat Category) bool { return strings.EqualFold(cat.Name, name) })
}

func (c Categories) indexByID(id int) int {
	return slices.IndexFunc(c, func(cat Category) bool { return cat.ID == id })
}

// Color returns the color of the named category, or the Uncategorized gray when it is unknown.
func (c Categories) Color(name string) string {
	if cat, ok := c.Find(name); ok && cat.Color != "" {
		return cat.Color
	}
	return uncategorizedFallbackHex
}

// Add creates a category with the next free ID. An empty color picks the first preset.
func (c *Categories) Add(name, color string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if c.indexByName(name) >= 0 {
		return Category{}, fmt.Errorf("%w: category %q already exists", ErrValidation, name)
	}
	if color == "" {
		color = ColorPresets[0]
	}
	if !colorPattern.MatchString(color) {
		return Category{}, fmt.Errorf("%w: color %q is not of the form #rrggbb", ErrValidation, color)
	}
	nextID := 1
	for _, cat := range *c {
		nextID = max(nextID, cat.ID+1)
	}
	cat := Category{ID: nextID, Name: name, Color: strings.ToLower(color), Protected: false}
	*c = append(*c, cat)
	return cat, nil
}

// Update changes the name and color of a category and returns its previous name. Protected categories keep their
// name. An empty name or color leaves that attribute unchanged.
func (c Categories) Update(id int, name, color string) (string, error) {
	i := c.indexByID(id)
	if i < 0 {
		return "", fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	old := c[i].Name
	name = strings.TrimSpace(name)
	if name != "" && name != old {
		if c[i].Protected {
			return "", fmt.Errorf("%w: category %q cannot be renamed", ErrValidation, old)
		}
		if j := c.indexByName(name); j >= 0 && j != i {
			return "", fmt.Errorf("%w: category %q already exists", ErrValidation, name)
		}
		c[i].Name = name
	}
	if color != "" {
		if !colorPattern.MatchString(color) {
			return "", fmt.Errorf("%w: color %q is not of the form #rrggbb", ErrValidation, color)
		}
		c[i].Color = strings.ToLower(color)
	}
	return old, nil
}

// Delete removes an unprotected category and returns it.
func (c *Categories) Delete(id int) (Category, error) {
	i := c.indexByID(id)
	if i < 0 {
		return Category{}, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	cat := (*c)[i]
	if cat.Protected {
		return Category{}, fmt.Errorf("%w: category %q is protected", ErrValidation, cat.Name)
	}
	*c = slices.Delete(*c, i, i+1)
	return cat, nil
}

// withProtected returns c with the protected seed categories appended when a stored configuration lost them.
func (c Categories) withProtected() Categories {
	for _, seed := range DefaultCategories() {
		if !seed.Protected || c.indexByName(seed.Name) >= 0 {
			continue
		}
		if c.indexByID(seed.ID) >= 0 {
			seed.ID = 0
			for _, cat := range c {
				seed.ID = max(seed.ID, cat.ID)
			}
			seed.ID++
		}
		c = append(c, seed)
	}
	return c
}

// CategoryResolver maps exercise names to categories and categories to colors.
type CategoryResolver struct {
	categories Categories
	byExercise map[string]string
}

// NewCategoryResolver resolves through library and categories. Unknown exercises, exercises without a category and
// exercises whose category no longer exists all resolve to Uncategorized.
func NewCategoryResolver(library Library, categories Categories) CategoryResolver {
	r := CategoryResolver{
		categories: categories,
		byExercise: make(map[string]string, len(library)),
	}
	for _, e := range library {
		key := strings.ToLower(e.Name)
		if _, ok := r.byExercise[key]; ok {
			continue
		}
		if cat, ok := categories.Find(e.Category); ok {
			r.byExercise[key] = cat.Name
		}
	}
	return r
}

// Category returns the category of the named exercise.
func (r CategoryResolver) Category(exerciseName string) string {
	if cat, ok := r.byExercise[strings.ToLower(strings.TrimSpace(exerciseName))]; ok {
		return cat
	}
	return CategoryUncategorized
}

// Color returns the display color of a category.
func (r CategoryResolver) Color(category string) string {
	return r.categories.Color(category)
}
