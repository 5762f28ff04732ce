package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"schedule-transformer/internal/property"
)

// TagName is the struct tag key read by the registry.
const TagName = "csv"

// tagConfig collects the csv struct tags of t into a RecordConfig.
func tagConfig(t *property.Type) (RecordConfig, error) {
	cfg := RecordConfig{Type: t.Name()}

	st := t.StructType()
	if st.Kind() != reflect.Struct {
		return cfg, nil
	}

	for sf := range fields(st) {
		tag, ok := sf.Tag.Lookup(TagName)
		if !ok {
			continue
		}

		if sf.Name == "_" {
			if err := parseTypeTag(tag, &cfg); err != nil {
				return cfg, &SchemaError{Type: t.Name(), Err: err}
			}

			continue
		}

		prop := propertyForField(t, sf.Name)
		if prop == nil {
			return cfg, &SchemaError{Type: t.Name(), Field: sf.Name, Err: fmt.Errorf("%s tag on a field that is not a described property", TagName)}
		}

		fc, err := parseFieldTag(tag)
		if err != nil {
			return cfg, &SchemaError{Type: t.Name(), Field: sf.Name, Err: err}
		}

		if cfg.Fields == nil {
			cfg.Fields = make(map[string]FieldConfig)
		}

		cfg.Fields[prop.Name()] = fc
	}

	return cfg, nil
}

func fields(st reflect.Type) func(yield func(reflect.StructField) bool) {
	return func(yield func(reflect.StructField) bool) {
		for i := range st.NumField() {
			if !yield(st.Field(i)) {
				return
			}
		}
	}
}

func propertyForField(t *property.Type, fieldName string) *property.Property {
	for _, p := range t.Properties() {
		if strings.EqualFold(p.Name(), fieldName) {
			return p
		}
	}

	return nil
}

func parseTypeTag(tag string, cfg *RecordConfig) error {
	for key, value := range tagOptions(tag) {
		switch key {
		case "record":
			cfg.Record = Set(value)
		case "prefix":
			cfg.Prefix = Set(value)
		case "required":
			b, err := tagBool(key, value)
			if err != nil {
				return err
			}

			cfg.Required = Set(b)
		case "order":
			cfg.FieldOrder = strings.Split(value, "|")
		default:
			return fmt.Errorf("unknown type tag option %q", key)
		}
	}

	return nil
}

func parseFieldTag(tag string) (FieldConfig, error) {
	var fc FieldConfig

	for key, value := range tagOptions(tag) {
		switch key {
		case "name":
			fc.Name = Set(value)
		case "codec":
			fc.Codec = Set(value)
		case "default":
			fc.Default = Set(value)
		case "ignore", "optional":
			b, err := tagBool(key, value)
			if err != nil {
				return fc, err
			}

			if key == "ignore" {
				fc.Ignore = Set(b)
			} else {
				fc.Optional = Set(b)
			}
		case "order":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fc, fmt.Errorf("invalid order %q: %w", value, err)
			}

			fc.Order = Set(n)
		default:
			return fc, fmt.Errorf("unknown field tag option %q", key)
		}
	}

	return fc, nil
}

// tagOptions yields the key=value pairs of a tag. A bare key yields an empty value.
func tagOptions(tag string) func(yield func(key, value string) bool) {
	return func(yield func(key, value string) bool) {
		for part := range strings.SplitSeq(tag, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			key, value, _ := strings.Cut(part, "=")
			if !yield(strings.TrimSpace(key), strings.TrimSpace(value)) {
				return
			}
		}
	}
}

func tagBool(key, value string) (bool, error) {
	if value == "" {
		return true, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}

	return b, nil
}
