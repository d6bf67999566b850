package config

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that files and the environment may spell
// either as a string like "3s" or as integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		return d.parse(x)
	case float64:
		d.Duration = time.Duration(x)
		return nil
	}
	return fmt.Errorf("invalid duration %s", b)
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var ns int64
	if n.Tag == "!!int" {
		if err := n.Decode(&ns); err != nil {
			return err
		}
		d.Duration = time.Duration(ns)
		return nil
	}
	return d.parse(n.Value)
}

// Decode lets envconfig read Duration values.
func (d *Duration) Decode(value string) error {
	return d.parse(value)
}
