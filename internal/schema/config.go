package schema

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"

	"schedule-transformer/internal/property"
)

// FieldConfig holds the mergeable settings of one property.
type FieldConfig struct {
	// Name overrides the derived external name.
	Name Opt[string] `yaml:"name,omitempty"`
	// Ignore drops the property from the schema.
	Ignore Opt[bool] `yaml:"ignore,omitempty"`
	// Optional lets the external field be missing or empty.
	Optional Opt[bool] `yaml:"optional,omitempty"`
	// Order positions the field; lower orders come first.
	Order Opt[int] `yaml:"order,omitempty"`
	// Codec names a codec factory registered in the codec registry.
	Codec Opt[string] `yaml:"codec,omitempty"`
	// Default is decoded in place of a missing or empty raw value.
	Default Opt[string] `yaml:"default,omitempty"`
}

// Merge returns f with every setting that src sets explicitly replaced.
func (f FieldConfig) Merge(src FieldConfig) FieldConfig {
	return FieldConfig{
		Name:     f.Name.Merge(src.Name),
		Ignore:   f.Ignore.Merge(src.Ignore),
		Optional: f.Optional.Merge(src.Optional),
		Order:    f.Order.Merge(src.Order),
		Codec:    f.Codec.Merge(src.Codec),
		Default:  f.Default.Merge(src.Default),
	}
}

// Validator checks a decoded entity. Validators run in ascending Order.
type Validator struct {
	Name  string
	Order int
	Check func(e property.Entity) error
}

// RecordConfig holds the mergeable settings of one entity type.
type RecordConfig struct {
	// Type is the entity type name.
	Type string `yaml:"type"`
	// Record is the external record name; defaults to the type name.
	Record Opt[string] `yaml:"record,omitempty"`
	// Prefix is prepended to derived field names.
	Prefix Opt[string] `yaml:"prefix,omitempty"`
	// Required marks a record that must be present in every input.
	Required Opt[bool] `yaml:"required,omitempty"`
	// FieldOrder lists external names in output order. A non-empty list
	// replaces the list below it.
	FieldOrder []string `yaml:"field_order,omitempty"`
	// Fields is keyed by property name.
	Fields map[string]FieldConfig `yaml:"fields,omitempty"`
	// Validators are appended to the ones below.
	Validators []Validator `yaml:"-"`
}

// Merge returns c with src merged on top.
func (c RecordConfig) Merge(src RecordConfig) RecordConfig {
	out := RecordConfig{
		Type:       c.Type,
		Record:     c.Record.Merge(src.Record),
		Prefix:     c.Prefix.Merge(src.Prefix),
		Required:   c.Required.Merge(src.Required),
		FieldOrder: c.FieldOrder,
		Fields:     make(map[string]FieldConfig, len(c.Fields)+len(src.Fields)),
	}

	if out.Type == "" {
		out.Type = src.Type
	}

	if len(src.FieldOrder) > 0 {
		out.FieldOrder = src.FieldOrder
	}

	maps.Copy(out.Fields, c.Fields)

	for name, fc := range src.Fields {
		out.Fields[name] = out.Fields[name].Merge(fc)
	}

	out.Validators = append(append([]Validator(nil), c.Validators...), src.Validators...)

	return out
}

// ConfigFile is the root of a YAML schema override file.
type ConfigFile struct {
	Version string         `yaml:"version,omitempty"`
	Records []RecordConfig `yaml:"records"`
}

// LoadConfigFile loads and parses a YAML schema override file.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema config %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML data into a ConfigFile.
func ParseConfig(data []byte) (*ConfigFile, error) {
	var cf ConfigFile

	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse schema config YAML: %w", err)
	}

	if cf.Version == "" {
		cf.Version = "1"
	}

	for i, rc := range cf.Records {
		if rc.Type == "" {
			return nil, fmt.Errorf("schema config record %d: missing type", i)
		}
	}

	return &cf, nil
}

// MarshalConfig serializes a ConfigFile to YAML.
func MarshalConfig(cf *ConfigFile) ([]byte, error) {
	return yaml.Marshal(cf)
}
