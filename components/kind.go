// Package components defines the data model shared by the effect engine and its renderers.
package components

import (
	"fmt"
	"strings"
)

// Kind identifies the type of effect particle.
type Kind uint8

const (
	KindHeartBurst Kind = iota
	KindPetal
	KindSparkle
	KindRosePetal
	KindFirefly
	KindButterfly
	KindPianoRipple
	KindFloatingNote
	KindBubble
	KindFirework

	numKinds
)

var kindNames = [numKinds]string{
	KindHeartBurst:   "heart_burst",
	KindPetal:        "petal",
	KindSparkle:      "sparkle",
	KindRosePetal:    "rose_petal",
	KindFirefly:      "firefly",
	KindButterfly:    "butterfly",
	KindPianoRipple:  "piano_ripple",
	KindFloatingNote: "floating_note",
	KindBubble:       "bubble",
	KindFirework:     "firework",
}

// AllKinds returns every known kind in declaration order.
func AllKinds() []Kind {
	kinds := make([]Kind, 0, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// String returns the snake_case name used in config files.
func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k < numKinds
}

// ParseKind maps a config name to a Kind.
func ParseKind(name string) (Kind, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown particle kind %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid particle kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// InteractionType identifies the input stream an interaction came from.
type InteractionType uint8

const (
	InteractionClick InteractionType = iota
	InteractionMove
	InteractionTick
	InteractionMount
)

var interactionNames = [...]string{
	InteractionClick: "click",
	InteractionMove:  "move",
	InteractionTick:  "tick",
	InteractionMount: "mount",
}

func (t InteractionType) String() string {
	if int(t) < len(interactionNames) {
		return interactionNames[t]
	}
	return fmt.Sprintf("interaction(%d)", uint8(t))
}

// Pointer reports whether interactions of this type carry a pointer position.
func (t InteractionType) Pointer() bool {
	return t == InteractionClick || t == InteractionMove
}

// ParseInteractionType maps a config trigger name to an InteractionType.
func ParseInteractionType(name string) (InteractionType, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	for t, n := range interactionNames {
		if n == name {
			return InteractionType(t), nil
		}
	}
	return 0, fmt.Errorf("unknown trigger %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t InteractionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *InteractionType) UnmarshalText(text []byte) error {
	parsed, err := ParseInteractionType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
