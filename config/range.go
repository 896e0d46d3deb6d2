package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Range is a [min, max) sampling interval. In YAML it is written as a
// scalar for a fixed value or as a two-element sequence.
type Range struct {
	Min float64
	Max float64
}

// Fixed returns a range that always yields v.
func Fixed(v float64) Range {
	return Range{Min: v, Max: v}
}

// Symmetric returns [-v, v].
func Symmetric(v float64) Range {
	return Range{Min: -v, Max: v}
}

// IsZero reports whether both bounds are zero.
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("line %d: range: %w", node.Line, err)
		}
		*r = Fixed(v)
		return nil
	case yaml.SequenceNode:
		var pair []float64
		if err := node.Decode(&pair); err != nil {
			return fmt.Errorf("line %d: range: %w", node.Line, err)
		}
		switch len(pair) {
		case 1:
			*r = Fixed(pair[0])
		case 2:
			*r = Range{Min: pair[0], Max: pair[1]}
		default:
			return fmt.Errorf("line %d: range needs 1 or 2 values, got %d", node.Line, len(pair))
		}
		return nil
	}
	return fmt.Errorf("line %d: range must be a number or [min, max]", node.Line)
}

// MarshalYAML implements yaml.Marshaler.
func (r Range) MarshalYAML() (any, error) {
	if r.Min == r.Max {
		return r.Min, nil
	}
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []float64{r.Min, r.Max} {
		var n yaml.Node
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &n)
	}
	return node, nil
}
