// Package prefs keeps small per-user interface flags, such as a dismissed
// banner, with an optional expiry.
package prefs

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrUnknownKey   = errors.New("unknown preference key")
	ErrInvalidValue = errors.New("invalid preference value")
	ErrNoScope      = errors.New("preferences need a user scope")
)

// Kind is the value type a key accepts.
type Kind string

const (
	KindBool   Kind = "bool"
	KindString Kind = "string"
)

// Definition declares one known preference key.
type Definition struct {
	Key     string        `json:"key"`
	Kind    Kind          `json:"kind"`
	TTL     time.Duration `json:"ttl"` // zero: never expires
	Default any           `json:"default"`
}

const (
	QuickStartCompleted     = "quickStartCompleted"
	ExpiringBannerDismissed = "expiringBannerDismissed"
)

var definitions = map[string]Definition{
	QuickStartCompleted:     {Key: QuickStartCompleted, Kind: KindBool, Default: false},
	ExpiringBannerDismissed: {Key: ExpiringBannerDismissed, Kind: KindBool, TTL: 24 * time.Hour, Default: false},
}

// Lookup returns the definition of key.
func Lookup(key string) (Definition, error) {
	def, ok := definitions[key]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return def, nil
}

// Definitions lists all known keys sorted by name.
func Definitions() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// check reports whether v fits the definition's kind.
func (d Definition) check(v any) error {
	switch d.Kind {
	case KindBool:
		if _, ok := v.(bool); ok {
			return nil
		}
	case KindString:
		if _, ok := v.(string); ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %s expects a %s, got %T", ErrInvalidValue, d.Key, d.Kind, v)
}
