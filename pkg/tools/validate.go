// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Validation collects every schema violation of a parameter set.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateParameters checks params against the tool schema. All violations
// are reported, in declaration order. A nil value counts as absent.
func ValidateParameters(tool Tool, params map[string]any) Validation {
	var errs []string
	for _, p := range tool.Parameters {
		value, present := params[p.Name]
		if !present || value == nil {
			if p.Required {
				errs = append(errs, fmt.Sprintf("missing required parameter: %s", p.Name))
			}
			continue
		}
		if !matchesType(p.Type, value) {
			errs = append(errs, fmt.Sprintf("parameter %s must be a %s", p.Name, p.Type))
			continue
		}
		if len(p.Enum) > 0 && !inEnum(p.Enum, value) {
			errs = append(errs, fmt.Sprintf("parameter %s must be one of %s", p.Name, formatEnum(p.Enum)))
		}
	}
	return Validation{Valid: len(errs) == 0, Errors: errs}
}

// applyDefaults returns a copy of params with declared defaults filled in
// for omitted optional parameters.
func applyDefaults(tool Tool, params map[string]any) map[string]any {
	out := make(map[string]any, len(params)+len(tool.Parameters))
	for k, v := range params {
		out[k] = v
	}
	for _, p := range tool.Parameters {
		if p.Default == nil {
			continue
		}
		if v, ok := out[p.Name]; !ok || v == nil {
			out[p.Name] = p.Default
		}
	}
	return out
}

func matchesType(t ParamType, value any) bool {
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeNumber:
		if _, ok := value.(json.Number); ok {
			return true
		}
		switch reflect.ValueOf(value).Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return true
		}
		return false
	case TypeObject:
		kind := reflect.ValueOf(value).Kind()
		if kind == reflect.Pointer {
			kind = reflect.Indirect(reflect.ValueOf(value)).Kind()
		}
		return kind == reflect.Map || kind == reflect.Struct
	case TypeArray:
		kind := reflect.ValueOf(value).Kind()
		return kind == reflect.Slice || kind == reflect.Array
	default:
		return true
	}
}

func inEnum(enum []any, value any) bool {
	for _, allowed := range enum {
		if reflect.DeepEqual(allowed, value) {
			return true
		}
		if fmt.Sprint(allowed) == fmt.Sprint(value) {
			return true
		}
	}
	return false
}

func formatEnum(enum []any) string {
	parts := make([]string, len(enum))
	for i, v := range enum {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
