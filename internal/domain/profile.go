package domain

import (
	"encoding/json"
	"fmt"
)

// Profile is a loader-produced version document. It keeps every top-level field
// as raw JSON so fields this package does not model survive a rewrite.
type Profile struct {
	fields map[string]json.RawMessage
}

// ParseProfile decodes a JSON object into a Profile.
func ParseProfile(data []byte) (*Profile, error) {
	p := &Profile{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Profile) UnmarshalJSON(data []byte) error {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode profile: %w", err)
	}
	p.fields = fields
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *Profile) MarshalJSON() ([]byte, error) {
	if p.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.fields)
}

// ID returns the "id" field.
func (p *Profile) ID() string {
	return p.str("id")
}

// SetID overwrites the "id" field.
func (p *Profile) SetID(id string) error {
	return p.set("id", id)
}

// InheritsFrom returns the "inheritsFrom" field.
func (p *Profile) InheritsFrom() string {
	return p.str("inheritsFrom")
}

// DefaultInheritsFrom sets "inheritsFrom" only when it is absent.
func (p *Profile) DefaultInheritsFrom(base string) error {
	if _, ok := p.fields["inheritsFrom"]; ok {
		return nil
	}
	return p.set("inheritsFrom", base)
}

// MainClass returns "mainClass", falling back to the older "main-class" spelling.
func (p *Profile) MainClass() string {
	if mc := p.str("mainClass"); mc != "" {
		return mc
	}
	return p.str("main-class")
}

// Has reports whether the top-level field exists.
func (p *Profile) Has(key string) bool {
	_, ok := p.fields[key]
	return ok
}

// Descriptor decodes the profile into the typed descriptor view.
func (p *Profile) Descriptor() (*VersionDescriptor, error) {
	data, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var d VersionDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode descriptor: %w", err)
	}
	if d.MainClass == "" {
		d.MainClass = p.MainClass()
	}
	return &d, nil
}

func (p *Profile) str(key string) string {
	raw, ok := p.fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (p *Profile) set(key, value string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if p.fields == nil {
		p.fields = make(map[string]json.RawMessage)
	}
	p.fields[key] = raw
	return nil
}
