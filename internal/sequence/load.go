package sequence

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Sequences map[string][]Step `yaml:"sequences"`
}

// LoadFile returns the built-in table overlaid with the sequences defined in path.
// A missing file yields the built-in table.
func LoadFile(path string) (Table, error) {
	table := Default()
	if path == "" {
		return table, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return table, nil
		}
		return nil, err
	}
	if err := Merge(table, data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Merge decodes YAML step tables from data into table, replacing sequences by name.
func Merge(table Table, data []byte) error {
	var f fileFormat
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	for name, steps := range f.Sequences {
		key := strings.ToUpper(strings.TrimSpace(name))
		if key == "" {
			return errors.New("sequence name is empty")
		}
		q := Sequence{Name: key, Steps: steps}
		if err := q.Validate(); err != nil {
			return err
		}
		table[key] = q
	}
	return nil
}
