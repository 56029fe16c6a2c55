// Package compiler turns machine definition documents into schema.DefinitionSpec.
//
// Three formats are understood: the line-oriented text format
//
//	name: Binary increment
//	states: scan, carry, done
//	blank: _
//	scan, 0 -> scan, 0, R
//
// and YAML or JSON documents using the same field names. Structured documents may
// write a transition as a mapping, as a five element list or as a text rule.
package compiler

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/aretw0/turing/pkg/schema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("syntax error")

// Format names a definition document encoding.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// SyntaxError locates a parse failure in a text document.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// FormatFromPath picks the format by file extension; anything unknown is text.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatText
	}
}

// ParseFile reads and parses a definition file.
func ParseFile(path string) (schema.DefinitionSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.DefinitionSpec{}, err
	}
	return Parse(FormatFromPath(path), data)
}

// Parse decodes data in the given format. It does not validate the result.
func Parse(format Format, data []byte) (schema.DefinitionSpec, error) {
	switch format {
	case FormatText:
		return parseText(data)
	case FormatYAML:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return schema.DefinitionSpec{}, fmt.Errorf("%w: %w", ErrSyntax, err)
		}
		return Decode(raw)
	case FormatJSON:
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return schema.DefinitionSpec{}, fmt.Errorf("%w: %w", ErrSyntax, err)
		}
		return Decode(raw)
	default:
		return schema.DefinitionSpec{}, fmt.Errorf("unknown format %q", format)
	}
}

// Decode converts a loosely typed document into a spec. Scalars are weakly
// typed, so a YAML 0 becomes the symbol "0".
func Decode(raw map[string]any) (schema.DefinitionSpec, error) {
	var spec schema.DefinitionSpec
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       transitionHook,
		WeaklyTypedInput: true,
		Result:           &spec,
		TagName:          "mapstructure",
	})
	if err != nil {
		return spec, err
	}
	if err := decoder.Decode(raw); err != nil {
		return spec, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	return spec, nil
}

var transitionType = reflect.TypeOf(schema.TransitionSpec{})

// transitionHook accepts the text rule and five element list shorthands.
func transitionHook(from, to reflect.Type, data any) (any, error) {
	if to != transitionType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return ParseTransition(v)
	case []any:
		if len(v) != 5 {
			return nil, fmt.Errorf("transition list needs 5 elements, got %d", len(v))
		}
		parts := make([]string, 5)
		for i, p := range v {
			parts[i] = fmt.Sprint(p)
		}
		return schema.TransitionSpec{
			CurrentState: parts[0],
			ReadSymbol:   parts[1],
			NextState:    parts[2],
			WriteSymbol:  parts[3],
			Move:         parts[4],
		}, nil
	}
	return data, nil
}

// ParseTransition parses "state, read -> next, write, move".
func ParseTransition(rule string) (schema.TransitionSpec, error) {
	t, err := parseRule(rule)
	if err != nil {
		return t, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	return t, nil
}

func parseRule(rule string) (schema.TransitionSpec, error) {
	left, right, ok := strings.Cut(rule, "->")
	if !ok {
		return schema.TransitionSpec{}, fmt.Errorf("transition %q has no '->'", rule)
	}
	lhs := splitList(left)
	rhs := splitList(right)
	if len(lhs) != 2 || len(rhs) != 3 {
		return schema.TransitionSpec{}, fmt.Errorf("transition %q must read 'state, symbol -> state, symbol, move'", rule)
	}
	return schema.TransitionSpec{
		CurrentState: lhs[0],
		ReadSymbol:   lhs[1],
		NextState:    rhs[0],
		WriteSymbol:  rhs[1],
		Move:         rhs[2],
	}, nil
}

var textKeys = map[string]bool{
	"name":           true,
	"description":    true,
	"states":         true,
	"input_alphabet": true,
	"tape_alphabet":  true,
	"blank":          true,
	"initial_state":  true,
	"final_states":   true,
}

func parseText(data []byte) (schema.DefinitionSpec, error) {
	var spec schema.DefinitionSpec
	sc := bufio.NewScanner(bytes.NewReader(data))
	// Any line of the document must fit, however long its description or alphabet.
	sc.Buffer(nil, max(len(data)+1, bufio.MaxScanTokenSize))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, isKey := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !isKey || !textKeys[key] {
			if !strings.Contains(line, "->") {
				return spec, &SyntaxError{Line: lineNo, Msg: fmt.Sprintf("expected 'key: value' or a transition, got %q", line)}
			}
			t, err := parseRule(line)
			if err != nil {
				return spec, &SyntaxError{Line: lineNo, Msg: err.Error()}
			}
			spec.Transitions = append(spec.Transitions, t)
			continue
		}

		value = strings.TrimSpace(value)
		switch key {
		case "name":
			spec.Name = value
		case "description":
			spec.Description = value
		case "states":
			spec.States = splitList(value)
		case "input_alphabet":
			spec.InputAlphabet = splitList(value)
		case "tape_alphabet":
			spec.TapeAlphabet = splitList(value)
		case "blank":
			spec.Blank = value
		case "initial_state":
			spec.InitialState = value
		case "final_states":
			spec.FinalStates = splitList(value)
		}
	}
	if err := sc.Err(); err != nil {
		return spec, &SyntaxError{Line: lineNo + 1, Msg: err.Error()}
	}
	return spec, nil
}

// splitList splits a comma separated list, trimming blanks. An empty value is an empty list.
func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
