// Package fieldmap translates record keys between the English names used by
// clients and the Dutch names used by the boekhouding backend.
package fieldmap

import (
	"errors"
	"fmt"
)

// ErrCollision is returned when two pairs share a key on either side.
var ErrCollision = errors.New("field name collision")

// Pair links one client field name to one backend field name.
type Pair struct {
	Frontend string
	Backend  string
}

// Schema is a bijective field-name mapping.
type Schema struct {
	toBackend  map[string]string
	toFrontend map[string]string
	pairs      []Pair
}

// NewSchema builds a schema, refusing any pair that would make the mapping lossy.
func NewSchema(pairs ...Pair) (*Schema, error) {
	s := &Schema{
		toBackend:  make(map[string]string, len(pairs)),
		toFrontend: make(map[string]string, len(pairs)),
		pairs:      make([]Pair, 0, len(pairs)),
	}
	for _, p := range pairs {
		if p.Frontend == "" || p.Backend == "" {
			return nil, fmt.Errorf("fieldmap: empty field name in pair %+v", p)
		}
		if prev, ok := s.toBackend[p.Frontend]; ok {
			return nil, fmt.Errorf("%w: %q already maps to %q", ErrCollision, p.Frontend, prev)
		}
		if prev, ok := s.toFrontend[p.Backend]; ok {
			return nil, fmt.Errorf("%w: %q is already the backend name of %q", ErrCollision, p.Backend, prev)
		}
		s.toBackend[p.Frontend] = p.Backend
		s.toFrontend[p.Backend] = p.Frontend
		s.pairs = append(s.pairs, p)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Use it for package-level schemas.
func MustSchema(pairs ...Pair) *Schema {
	s, err := NewSchema(pairs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Default is the customer/supplier schema the backend expects.
var Default = MustSchema(
	Pair{"name", "naam"},
	Pair{"address", "adres"},
	Pair{"city", "plaats"},
	Pair{"postal_code", "postcode"},
	Pair{"country", "land"},
	Pair{"phone", "telefoon"},
	Pair{"email", "email"},
	Pair{"vat_number", "btw_nummer"},
	Pair{"payment_terms", "betalingstermijn"},
	Pair{"customer_number", "klantnummer"},
	Pair{"contact_person", "contactpersoon"},
)

// Pairs returns the pairs in declaration order.
func (s *Schema) Pairs() []Pair {
	out := make([]Pair, len(s.pairs))
	copy(out, s.pairs)
	return out
}

// BackendName returns the backend name for a client field, or the field itself if unmapped.
func (s *Schema) BackendName(field string) string {
	if v, ok := s.toBackend[field]; ok {
		return v
	}
	return field
}

// FrontendName returns the client name for a backend field, or the field itself if unmapped.
func (s *Schema) FrontendName(field string) string {
	if v, ok := s.toFrontend[field]; ok {
		return v
	}
	return field
}

// ToBackend renames known keys to their backend names. Unknown keys pass through.
// A record that already mixes both spellings of one field keeps the mapped value.
func (s *Schema) ToBackend(rec map[string]any) map[string]any {
	return rename(rec, s.toBackend)
}

// ToFrontend renames known keys to their client names. Unknown keys pass through.
func (s *Schema) ToFrontend(rec map[string]any) map[string]any {
	return rename(rec, s.toFrontend)
}

func rename(rec map[string]any, names map[string]string) map[string]any {
	if rec == nil {
		return nil
	}
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		if _, mapped := names[k]; !mapped {
			out[k] = v
		}
	}
	for k, v := range rec {
		if to, mapped := names[k]; mapped {
			out[to] = v
		}
	}
	return out
}
