package coach

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/myrjola/gymlog/internal/workout"
	"gopkg.in/yaml.v3"
)

// Mode is a coaching goal together with the programming instructions given to the model.
type Mode struct {
	Key          string `yaml:"key"`
	Name         string `yaml:"name"`
	Instructions string `yaml:"instructions"`
}

type modeFile struct {
	Modes []Mode `yaml:"modes"`
}

//go:embed modes.yaml
var builtinModes []byte

// Catalog holds the available coaching modes in definition order.
type Catalog struct {
	modes []Mode
}

// LoadCatalog returns the built-in modes extended by the modes in path. Modes in path replace built-in modes
// with the same key. An empty path loads only the built-in modes.
func LoadCatalog(path string) (*Catalog, error) {
	c := &Catalog{modes: nil}
	if err := c.merge(builtinModes); err != nil {
		return nil, fmt.Errorf("load built-in modes: %w", err)
	}
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read modes file: %w", err)
	}
	if err = c.merge(b); err != nil {
		return nil, fmt.Errorf("load modes file %s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) merge(b []byte) error {
	var f modeFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("unmarshal modes: %w", err)
	}
	for i, m := range f.Modes {
		m.Key = strings.TrimSpace(m.Key)
		m.Name = strings.TrimSpace(m.Name)
		m.Instructions = strings.TrimSpace(m.Instructions)
		if m.Key == "" || m.Name == "" || m.Instructions == "" {
			return fmt.Errorf("mode %d: key, name and instructions are required", i+1)
		}
		c.put(m)
	}
	return nil
}

func (c *Catalog) put(m Mode) {
	for i := range c.modes {
		if c.modes[i].Key == m.Key {
			c.modes[i] = m
			return
		}
	}
	c.modes = append(c.modes, m)
}

// Mode looks up key. Unknown keys fall back to the progressive overload mode.
func (c *Catalog) Mode(key string) Mode {
	if m, ok := c.lookup(key); ok {
		return m
	}
	m, _ := c.lookup(workout.DefaultCoachMode)
	return m
}

// Has reports whether key names a configured mode.
func (c *Catalog) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

func (c *Catalog) lookup(key string) (Mode, bool) {
	for _, m := range c.modes {
		if m.Key == key {
			return m, true
		}
	}
	return Mode{}, false
}

// Modes lists every mode in definition order.
func (c *Catalog) Modes() []Mode {
	out := make([]Mode, len(c.modes))
	copy(out, c.modes)
	return out
}
