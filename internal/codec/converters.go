package codec

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schedule-transformer/internal/calendar"
	"schedule-transformer/internal/property"
)

// Converter parses and formats values of one Go type.
type Converter struct {
	Parse  func(s string) (any, error)
	Format func(v any) (string, error)
}

// Converters maps Go types to converters. Named types whose underlying kind
// is a string, bool or number are handled by kind when not registered
// explicitly, and a pointer type is handled when its element type is.
type Converters struct {
	byType map[reflect.Type]Converter
}

// NewConverters returns a table with the built-in converters.
func NewConverters() *Converters {
	c := &Converters{byType: make(map[reflect.Type]Converter)}

	RegisterFunc(c, decimal.NewFromString, func(d decimal.Decimal) string { return d.String() })
	RegisterFunc(c, uuid.Parse, func(u uuid.UUID) string { return u.String() })
	RegisterFunc(c, calendar.Parse, calendar.Date.String)

	return c
}

// Register installs conv for rt, replacing any previous converter.
func (c *Converters) Register(rt reflect.Type, conv Converter) {
	c.byType[rt] = conv
}

// RegisterFunc installs a converter for V from a typed parse/format pair.
func RegisterFunc[V any](c *Converters, parse func(string) (V, error), format func(V) string) {
	c.Register(reflect.TypeFor[V](), Converter{
		Parse: func(s string) (any, error) {
			v, err := parse(s)
			if err != nil {
				return nil, err
			}

			return v, nil
		},
		Format: func(v any) (string, error) {
			typed, ok := v.(V)
			if !ok {
				return "", fmt.Errorf("cannot format %T as %v", v, reflect.TypeFor[V]())
			}

			return format(typed), nil
		},
	})
}

// Lookup returns the converter for rt.
func (c *Converters) Lookup(rt reflect.Type) (Converter, bool) {
	if conv, ok := c.byType[rt]; ok {
		return conv, true
	}

	if rt.Kind() == reflect.Pointer {
		elem, ok := c.Lookup(rt.Elem())
		if !ok {
			return Converter{}, false
		}

		return pointerConverter(rt, elem), true
	}

	return kindConverter(rt)
}

// Convert parses s into a value of type rt.
func (c *Converters) Convert(s string, rt reflect.Type) (any, error) {
	conv, ok := c.Lookup(rt)
	if !ok {
		return nil, fmt.Errorf("%w %v", ErrNoConverter, rt)
	}

	return conv.Parse(s)
}

// Format renders v with the converter of its dynamic type.
func (c *Converters) Format(v any) (string, error) {
	if property.IsNil(v) {
		return "", nil
	}

	conv, ok := c.Lookup(reflect.TypeOf(v))
	if !ok {
		return "", fmt.Errorf("%w %T", ErrNoConverter, v)
	}

	return conv.Format(v)
}

func pointerConverter(rt reflect.Type, elem Converter) Converter {
	return Converter{
		Parse: func(s string) (any, error) {
			v, err := elem.Parse(s)
			if err != nil {
				return nil, err
			}

			ptr := reflect.New(rt.Elem())
			ptr.Elem().Set(reflect.ValueOf(v))

			return ptr.Interface(), nil
		},
		Format: func(v any) (string, error) {
			if property.IsNil(v) {
				return "", nil
			}

			return elem.Format(reflect.ValueOf(v).Elem().Interface())
		},
	}
}

func kindConverter(rt reflect.Type) (Converter, bool) {
	switch rt.Kind() {
	case reflect.String:
		return Converter{
			Parse: func(s string) (any, error) {
				return reflect.ValueOf(s).Convert(rt).Interface(), nil
			},
			Format: func(v any) (string, error) {
				return reflect.ValueOf(v).String(), nil
			},
		}, true
	case reflect.Bool:
		return Converter{
			Parse: func(s string) (any, error) {
				b, err := strconv.ParseBool(strings.TrimSpace(s))
				if err != nil {
					return nil, err
				}

				return reflect.ValueOf(b).Convert(rt).Interface(), nil
			},
			Format: func(v any) (string, error) {
				return strconv.FormatBool(reflect.ValueOf(v).Bool()), nil
			},
		}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Converter{
			Parse: func(s string) (any, error) {
				n, err := strconv.ParseInt(strings.TrimSpace(s), 10, rt.Bits())
				if err != nil {
					return nil, err
				}

				return reflect.ValueOf(n).Convert(rt).Interface(), nil
			},
			Format: func(v any) (string, error) {
				return strconv.FormatInt(reflect.ValueOf(v).Int(), 10), nil
			},
		}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Converter{
			Parse: func(s string) (any, error) {
				n, err := strconv.ParseUint(strings.TrimSpace(s), 10, rt.Bits())
				if err != nil {
					return nil, err
				}

				return reflect.ValueOf(n).Convert(rt).Interface(), nil
			},
			Format: func(v any) (string, error) {
				return strconv.FormatUint(reflect.ValueOf(v).Uint(), 10), nil
			},
		}, true
	case reflect.Float32, reflect.Float64:
		return Converter{
			Parse: func(s string) (any, error) {
				f, err := strconv.ParseFloat(strings.TrimSpace(s), rt.Bits())
				if err != nil {
					return nil, err
				}

				return reflect.ValueOf(f).Convert(rt).Interface(), nil
			},
			Format: func(v any) (string, error) {
				return strconv.FormatFloat(reflect.ValueOf(v).Float(), 'f', -1, rt.Bits()), nil
			},
		}, true
	default:
		return Converter{}, false
	}
}
