package codec

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"

	"schedule-transformer/internal/calendar"
	"schedule-transformer/internal/property"
)

// Identity converts through a Converter for the property type.
type Identity struct {
	conv Converter
}

// NewIdentity returns an identity codec using conv.
func NewIdentity(conv Converter) *Identity {
	return &Identity{conv: conv}
}

func (c *Identity) Decode(_ *Context, raw string) (any, error) {
	return c.conv.Parse(raw)
}

func (c *Identity) Encode(_ *Context, v any) (string, error) {
	if property.IsNil(v) {
		return "", nil
	}

	return c.conv.Format(v)
}

var clockTimePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})$`)

// ParseClockTime converts "H:MM:SS" to seconds since midnight. Hours may
// exceed 23 for service running past midnight.
func ParseClockTime(s string) (int, error) {
	m := clockTimePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.New("invalid clock time, want H:MM:SS")
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])

	return seconds + 60*(minutes+60*hours), nil
}

// FormatClockTime renders seconds since midnight as zero padded HH:MM:SS.
// Negative values render as an empty string.
func FormatClockTime(t int) string {
	if t < 0 {
		return ""
	}

	hours := t / 3600
	t -= hours * 3600
	minutes := t / 60
	seconds := t - minutes*60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// ClockTime stores clock times as integer seconds.
type ClockTime struct {
	typ reflect.Type
}

// NewClockTime returns a clock time codec for an integer (or pointer to
// integer) property type.
func NewClockTime(rt reflect.Type) (*ClockTime, error) {
	if !isIntType(rt) && (rt.Kind() != reflect.Pointer || !isIntType(rt.Elem())) {
		return nil, fmt.Errorf("clock time needs an integer property, got %v", rt)
	}

	return &ClockTime{typ: rt}, nil
}

func (c *ClockTime) Decode(_ *Context, raw string) (any, error) {
	secs, err := ParseClockTime(raw)
	if err != nil {
		return nil, err
	}

	return fitInt(int64(secs), c.typ), nil
}

func (c *ClockTime) Encode(_ *Context, v any) (string, error) {
	if property.IsNil(v) {
		return "", nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}

	if !isIntType(rv.Type()) {
		return "", fmt.Errorf("clock time: cannot encode %T", v)
	}

	return FormatClockTime(int(rv.Int())), nil
}

// Date stores YYYYMMDD values as calendar.Date.
type Date struct{}

func (Date) Decode(_ *Context, raw string) (any, error) {
	return calendar.Parse(raw)
}

func (Date) Encode(_ *Context, v any) (string, error) {
	d, ok := v.(calendar.Date)
	if !ok {
		return "", fmt.Errorf("date: cannot encode %T", v)
	}

	if d.IsZero() {
		return "", nil
	}

	return d.String(), nil
}

// EntityRef resolves a raw id to an already loaded entity of Target.
type EntityRef struct {
	Target   *property.Type
	Required bool
	keyConv  Converter
}

// NewEntityRef builds a reference codec to target using conv to type the key.
func NewEntityRef(target *property.Type, required bool, convs *Converters) (*EntityRef, error) {
	if !target.HasKey() {
		return nil, fmt.Errorf("entity %s has no key property", target.Name())
	}

	conv, ok := convs.Lookup(target.KeyProperty().Type())
	if !ok {
		return nil, fmt.Errorf("%w %v (key of %s)", ErrNoConverter, target.KeyProperty().Type(), target.Name())
	}

	return &EntityRef{Target: target, Required: required, keyConv: conv}, nil
}

func (c *EntityRef) Decode(ctx *Context, raw string) (any, error) {
	key, err := c.keyConv.Parse(raw)
	if err != nil {
		return nil, err
	}

	if e, ok := ctx.Lookup(c.Target, key); ok {
		return e, nil
	}

	if c.Required {
		return nil, fmt.Errorf("%w: %s %v", ErrMissingReference, c.Target.Name(), key)
	}

	return Deferred{Type: c.Target, Key: key}, nil
}

func (c *EntityRef) Encode(_ *Context, v any) (string, error) {
	if property.IsNil(v) {
		return "", nil
	}

	if !c.Target.Owns(v) {
		return "", fmt.Errorf("reference: %T is not a %s", v, c.Target.Name())
	}

	return c.keyConv.Format(c.Target.Key(v))
}

// TranslatedID passes decoded ids of one kind through Context.TranslateID.
type TranslatedID struct {
	Kind string
	conv Converter
}

// NewTranslatedID returns a translating codec for string typed ids.
func NewTranslatedID(kind string, conv Converter) *TranslatedID {
	return &TranslatedID{Kind: kind, conv: conv}
}

func (c *TranslatedID) Decode(ctx *Context, raw string) (any, error) {
	return c.conv.Parse(ctx.TranslateID(c.Kind, raw))
}

func (c *TranslatedID) Encode(_ *Context, v any) (string, error) {
	if property.IsNil(v) {
		return "", nil
	}

	return c.conv.Format(v)
}

// Flag decodes True to true and every other value to false. It does not
// reject unknown literals.
type Flag struct {
	True  string
	False string
}

func (c Flag) Decode(_ *Context, raw string) (any, error) {
	return raw == c.True, nil
}

func (c Flag) Encode(_ *Context, v any) (string, error) {
	b, ok := v.(bool)
	if !ok {
		return "", fmt.Errorf("flag: cannot encode %T", v)
	}

	if b {
		return c.True, nil
	}

	return c.False, nil
}

func isIntType(rt reflect.Type) bool {
	switch rt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func fitInt(n int64, rt reflect.Type) any {
	if rt.Kind() == reflect.Pointer {
		ptr := reflect.New(rt.Elem())
		ptr.Elem().SetInt(n)

		return ptr.Interface()
	}

	v := reflect.New(rt).Elem()
	v.SetInt(n)

	return v.Interface()
}
