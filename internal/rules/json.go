package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var errNotObject = errors.New("rule must be an object")

// parseRule reads one rule line as strict JSON into a yaml.Node tree, which
// keeps member order and records the JSON type of every scalar as its tag.
func parseRule(text string) (*yaml.Node, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	if tok != json.Delim('{') {
		return nil, errNotObject
	}

	obj, err := decodeObject(dec)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after the rule object")
		}

		return nil, err
	}

	return obj, nil
}

func decodeValue(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected %q", v)
		}
	case string:
		return stringNode(v), nil
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(v.String(), ".eE") {
			tag = "!!float"
		}

		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.String()}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

// decodeObject reads members up to and including the closing brace.
func decodeObject(dec *json.Decoder) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: yaml.FlowStyle}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key %v is not a string", tok)
		}

		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}

		n.Content = append(n.Content, stringNode(key), val)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return n, nil
}

func decodeArray(dec *json.Decoder) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}

	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}

		n.Content = append(n.Content, val)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return n, nil
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle}
}
