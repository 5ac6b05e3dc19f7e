package experiment

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var definitionFS embed.FS

// Load reads an embedded experiment definition by name.
func Load(name string) (*Definition, error) {
	data, err := definitionFS.ReadFile(name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("experiment %q not found (available: %s): %w",
			name, strings.Join(List(), ", "), err)
	}
	return parse(data, name)
}

// LoadFile reads an experiment definition from an arbitrary YAML file.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiment file: %w", err)
	}
	return parse(data, path)
}

func parse(data []byte, origin string) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse experiment %q: %w", origin, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("experiment %q: %w", origin, err)
	}
	return &d, nil
}

// List returns the names of all embedded definitions, sorted.
func List() []string {
	entries, _ := definitionFS.ReadDir(".")
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	sort.Strings(names)
	return names
}
