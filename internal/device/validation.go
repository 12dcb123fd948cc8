package device

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Operating limits for numeric device parameters.
const (
	MinWaterTemp  = 49
	MaxWaterTemp  = 60
	MinACTemp     = 16
	MaxACTemp     = 30
	MinBrightness = 0
	MaxBrightness = 100
	MinPosition   = 0
	MaxPosition   = 100
	MinBattery    = 0
	MaxBattery    = 100
)

// Patterns for string-typed parameters.
//
// Time: hours 00-23, minutes 00-59, optional seconds 00-59.
// Color: #RGB or #RRGGBB hex notation.
const (
	timePattern  = `^([01][0-9]|2[0-3]):([0-5][0-9])(:[0-5][0-9])?$`
	colorPattern = `^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`
)

var (
	timeRegex  = regexp.MustCompile(timePattern)
	colorRegex = regexp.MustCompile(colorPattern)
)

// requiredFields is the exact top-level key set of a new device record.
var requiredFields = []string{"id", "type", "room", "name", "status", "parameters"}

// updatableFields is the allowed top-level key set of an update record.
var updatableFields = []string{"room", "name", "status", "parameters"}

// paramKind classifies how a parameter value is checked.
type paramKind int

const (
	kindInt paramKind = iota
	kindBool
	kindEnum
	kindTime
	kindColor
)

// paramSpec declares the type and range of one device parameter.
type paramSpec struct {
	kind     paramKind
	hasRange bool
	min, max int
	allowed  []string
}

// paramSpecs maps each device type to its allowed parameters. Keys not
// in the map for a type are disallowed outright.
var paramSpecs = map[Type]map[string]paramSpec{
	TypeLight: {
		"brightness":    {kind: kindInt, hasRange: true, min: MinBrightness, max: MaxBrightness},
		"color":         {kind: kindColor},
		"is_dimmable":   {kind: kindBool},
		"dynamic_color": {kind: kindBool},
	},
	TypeCurtain: {
		"position": {kind: kindInt, hasRange: true, min: MinPosition, max: MaxPosition},
	},
	TypeDoorLock: {
		"auto_lock_enabled": {kind: kindBool},
		"battery_level":     {kind: kindInt, hasRange: true, min: MinBattery, max: MaxBattery},
	},
	TypeWaterHeater: {
		"temperature":        {kind: kindInt},
		"target_temperature": {kind: kindInt, hasRange: true, min: MinWaterTemp, max: MaxWaterTemp},
		"is_heating":         {kind: kindBool},
		"timer_enabled":      {kind: kindBool},
		"scheduled_on":       {kind: kindTime},
		"scheduled_off":      {kind: kindTime},
	},
	TypeAirConditioner: {
		"temperature": {kind: kindInt, hasRange: true, min: MinACTemp, max: MaxACTemp},
		"mode":        {kind: kindEnum, allowed: []string{"cool", "fan", "heat"}},
		"fan_speed":   {kind: kindEnum, allowed: []string{"high", "low", "medium", "off"}},
		"swing":       {kind: kindEnum, allowed: []string{"auto", "off", "on"}},
	},
}

// ValidateNew checks a candidate new-device record. The top-level key
// set must match requiredFields exactly; the rest of the record is then
// checked against the schema of its own declared type. The returned
// reasons list is empty when the record is valid. The record is never
// mutated.
func ValidateNew(record map[string]any) []string {
	if !sameKeySet(record, requiredFields) {
		return []string{fmt.Sprintf(
			"Incorrect field(s) in new device %v, must be exactly these fields: %v",
			keyDiff(record, requiredFields), requiredFields)}
	}

	rawType, _ := record["type"].(string)
	typ := Type(rawType)
	if !validType(typ) {
		return []string{fmt.Sprintf(
			"Incorrect device type %v, must be one of %v.",
			record["type"], typeNames())}
	}

	var reasons []string
	for _, field := range []string{"id", "room", "name"} {
		if _, ok := record[field].(string); !ok {
			reasons = append(reasons, fmt.Sprintf(
				"'%s' must be a string, got %v instead.", field, record[field]))
		}
	}
	return append(reasons, validateFields(record, typ)...)
}

// ValidateUpdate checks a partial update record for a device of the
// given type. Only keys from updatableFields may be present; values are
// checked against the existing device's type schema. The returned
// reasons list is empty when the update is valid.
func ValidateUpdate(update map[string]any, typ Type) []string {
	var extras []string
	for key := range update {
		if !contains(updatableFields, key) {
			extras = append(extras, key)
		}
	}
	if len(extras) > 0 {
		sort.Strings(extras)
		return []string{fmt.Sprintf(
			"Disallowed field(s) in update %v, allowed fields: %v",
			extras, updatableFields)}
	}

	var reasons []string
	for _, field := range []string{"room", "name"} {
		if v, ok := update[field]; ok {
			if _, ok := v.(string); !ok {
				reasons = append(reasons, fmt.Sprintf(
					"'%s' must be a string, got %v instead.", field, v))
			}
		}
	}
	return append(reasons, validateFields(update, typ)...)
}

// validateFields checks the status and parameters entries of a record
// against the type's schema, accumulating every failure found.
func validateFields(record map[string]any, typ Type) []string {
	var reasons []string

	if v, ok := record["status"]; ok {
		if reason := checkStatus(v, typ); reason != "" {
			reasons = append(reasons, reason)
		}
	}

	if v, ok := record["parameters"]; ok {
		params, ok := v.(map[string]any)
		if !ok {
			return append(reasons, fmt.Sprintf(
				"'parameters' must be a mapping, got %v instead.", v))
		}
		reasons = append(reasons, checkParameters(params, typ)...)
	}
	return reasons
}

// checkStatus verifies the value against the type's two-value domain.
func checkStatus(v any, typ Type) string {
	allowed := statusNames(typ)
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("'status' must be a string, got %v instead.", v)
	}
	if !contains(allowed, s) {
		return fmt.Sprintf(
			"'%v' is not a valid value for 'status'. Must be one of %v.", s, allowed)
	}
	return ""
}

// checkParameters verifies every key and value of a parameters block,
// accumulating all failures rather than stopping at the first.
func checkParameters(params map[string]any, typ Type) []string {
	specs := paramSpecs[typ]
	allowed := parameterNames(typ)

	var extras []string
	for key := range params {
		if _, ok := specs[key]; !ok {
			extras = append(extras, key)
		}
	}
	if len(extras) > 0 {
		sort.Strings(extras)
		return []string{fmt.Sprintf(
			"Disallowed parameters for %s %v, allowed parameters: %v",
			typ.DisplayName(), extras, allowed)}
	}

	var reasons []string
	for _, key := range sortedKeys(params) {
		if reason := checkParam(key, params[key], specs[key]); reason != "" {
			reasons = append(reasons, reason)
		}
	}
	return reasons
}

// checkParam verifies one parameter value against its spec. Returns an
// empty string when the value is acceptable.
func checkParam(name string, value any, spec paramSpec) string {
	switch spec.kind {
	case kindInt:
		n, ok := coerceInt(value)
		if !ok {
			return fmt.Sprintf("'%s' must be a numeric string, got %v instead.", name, value)
		}
		if spec.hasRange && (n < spec.min || n > spec.max) {
			return fmt.Sprintf("'%s' must be between %d and %d, got %v instead.",
				name, spec.min, spec.max, n)
		}
	case kindBool:
		if _, ok := value.(bool); !ok {
			return fmt.Sprintf("'%s' must be a boolean, got %v instead.", name, value)
		}
	case kindEnum:
		s, ok := value.(string)
		if !ok {
			return fmt.Sprintf("'%s' must be a string, got %v instead.", name, value)
		}
		if !contains(spec.allowed, s) {
			return fmt.Sprintf("'%v' is not a valid value for '%s'. Must be one of %v.",
				s, name, spec.allowed)
		}
	case kindTime:
		s, ok := value.(string)
		if !ok {
			return fmt.Sprintf("'%s' must be a string, got %v instead.", name, value)
		}
		if !timeRegex.MatchString(s) {
			return fmt.Sprintf("'%v' is not a valid ISO format time string.", s)
		}
	case kindColor:
		s, ok := value.(string)
		if !ok {
			return fmt.Sprintf("'%s' must be a string, got %v instead.", name, value)
		}
		if !colorRegex.MatchString(s) {
			return fmt.Sprintf("'%v' is not a valid hex color string.", s)
		}
	}
	return ""
}

// coerceInt converts a value to int when the conversion is lossless.
// JSON numbers arrive as float64; numeric strings are accepted the same
// way the wire peers send them.
func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// validType reports whether t is a member of the closed type set.
func validType(t Type) bool {
	for _, valid := range AllTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// typeNames returns the device type names in sorted order.
func typeNames() []string {
	names := make([]string, 0, len(AllTypes()))
	for _, t := range AllTypes() {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

// statusNames returns the type's status domain in sorted order.
func statusNames(typ Type) []string {
	domain := typ.StatusDomain()
	names := []string{string(domain[0]), string(domain[1])}
	sort.Strings(names)
	return names
}

// parameterNames returns the type's allowed parameter keys in sorted
// order.
func parameterNames(typ Type) []string {
	return sortedKeys(paramSpecs[typ])
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// sameKeySet reports whether the record's keys equal want exactly.
func sameKeySet(record map[string]any, want []string) bool {
	if len(record) != len(want) {
		return false
	}
	for _, key := range want {
		if _, ok := record[key]; !ok {
			return false
		}
	}
	return true
}

// keyDiff returns the symmetric difference between the record's keys
// and want, sorted.
func keyDiff(record map[string]any, want []string) []string {
	var diff []string
	for key := range record {
		if !contains(want, key) {
			diff = append(diff, key)
		}
	}
	for _, key := range want {
		if _, ok := record[key]; !ok {
			diff = append(diff, key)
		}
	}
	sort.Strings(diff)
	return diff
}
