// Package settings defines the adjustable spotlight properties and their
// persistence. Each property can be assigned from the command line via
// `-c key=value` and is validated against its declared type and range.
package settings

import (
	"fmt"
	"strconv"
	"strings"
)

// PropertyType describes how a property value string is interpreted.
type PropertyType int

const (
	TypeBool PropertyType = iota
	TypeInteger
	TypeDouble
	TypeStringEnum
)

func (t PropertyType) String() string {
	switch t {
	case TypeBool:
		return "Bool"
	case TypeInteger:
		return "Integer"
	case TypeDouble:
		return "Double"
	case TypeStringEnum:
		return "StringEnum"
	default:
		return "Unknown"
	}
}

// Property is the definition of one adjustable setting.
type Property struct {
	Key     string
	Type    PropertyType
	Default string

	// Min/Max bound Integer and Double properties.
	Min float64
	Max float64

	// Values enumerates the allowed values of a StringEnum property.
	Values []string
}

// Registry returns the ordered list of all adjustable properties.
func Registry() []Property {
	return []Property{
		{Key: "spot.enabled", Type: TypeBool, Default: "false"},
		{Key: "spot.size", Type: TypeInteger, Default: "32", Min: 5, Max: 100},
		{Key: "spot.shape", Type: TypeStringEnum, Default: "circle",
			Values: []string{"circle", "square", "star"}},
		{Key: "spot.rotation", Type: TypeDouble, Default: "0", Min: 0, Max: 360},
		{Key: "shade.opacity", Type: TypeDouble, Default: "0.3", Min: 0, Max: 1},
		{Key: "zoom.enabled", Type: TypeBool, Default: "false"},
		{Key: "zoom.factor", Type: TypeDouble, Default: "2", Min: 1.5, Max: 20},
		{Key: "dialog.visible", Type: TypeBool, Default: "false"},
	}
}

// Lookup finds a property definition by key.
func Lookup(key string) (Property, bool) {
	for _, p := range Registry() {
		if p.Key == key {
			return p, true
		}
	}
	return Property{}, false
}

// Validate checks a value string against the property's type and range.
func (p Property) Validate(value string) error {
	switch p.Type {
	case TypeBool:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("property %s expects a boolean, got %q", p.Key, value)
		}
	case TypeInteger:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("property %s expects an integer, got %q", p.Key, value)
		}
		if float64(n) < p.Min || float64(n) > p.Max {
			return fmt.Errorf("property %s out of range %s, got %d", p.Key, p.RangeString(), n)
		}
	case TypeDouble:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("property %s expects a number, got %q", p.Key, value)
		}
		if f < p.Min || f > p.Max {
			return fmt.Errorf("property %s out of range %s, got %v", p.Key, p.RangeString(), f)
		}
	case TypeStringEnum:
		for _, v := range p.Values {
			if v == value {
				return nil
			}
		}
		return fmt.Errorf("property %s expects one of %s, got %q", p.Key, p.RangeString(), value)
	}
	return nil
}

// Canonical normalizes a validated value for storage. Bool properties
// accept every strconv spelling ("1", "t", "TRUE"); storing the
// canonical form keeps later comparisons consistent.
func (p Property) Canonical(value string) string {
	if p.Type == TypeBool {
		if b, err := strconv.ParseBool(value); err == nil {
			return strconv.FormatBool(b)
		}
	}
	return value
}

// RangeString renders the allowed range for help output, e.g.
// "(5 ... 100)" for numbers or "(circle, square, star)" for enums.
func (p Property) RangeString() string {
	switch p.Type {
	case TypeInteger:
		return fmt.Sprintf("(%d ... %d)", int64(p.Min), int64(p.Max))
	case TypeDouble:
		return fmt.Sprintf("(%v ... %v)", p.Min, p.Max)
	case TypeStringEnum:
		return fmt.Sprintf("(%s)", strings.Join(p.Values, ", "))
	}
	return ""
}
