package command

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Coerce converts raw into a value of t's Go type.
//
// Enumerations accept only their symbolic names, matched case-insensitively;
// text that parses as an integer is rejected even when it is a valid ordinal.
// A raw value that already has t's Go type passes through unchanged. Any other
// raw value must be a string convertible to t.
func Coerce(t Type, raw any) (reflect.Value, error) {
	if !t.valid() {
		return reflect.Value{}, registrationError("parameter type %q is not initialized", t.name)
	}
	if raw == nil {
		return reflect.Value{}, typeError(raw, t)
	}

	if t.kind == KindEnum {
		if s, ok := raw.(string); ok {
			return coerceEnum(t, s)
		}
	}

	if reflect.TypeOf(raw) == t.goType {
		return reflect.ValueOf(raw), nil
	}

	s, ok := raw.(string)
	if !ok {
		return reflect.Value{}, typeError(raw, t)
	}

	var (
		v   any
		err error
	)
	switch t.kind {
	case KindString:
		v = s
	case KindInt:
		v, err = strconv.Atoi(strings.TrimSpace(s))
	case KindFloat:
		v, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
	case KindBool:
		v, err = parseBool(s)
	case KindDuration:
		v, err = time.ParseDuration(strings.TrimSpace(s))
	default:
		return reflect.Value{}, typeError(raw, t)
	}
	if err != nil {
		return reflect.Value{}, typeError(raw, t)
	}

	rv := reflect.ValueOf(v)
	if rv.Type() != t.goType {
		rv = rv.Convert(t.goType)
	}
	return rv, nil
}

// parseBool accepts only true and false, in any case
func parseBool(s string) (bool, error) {
	switch s = strings.TrimSpace(s); {
	case strings.EqualFold(s, "true"):
		return true, nil
	case strings.EqualFold(s, "false"):
		return false, nil
	}
	return false, strconv.ErrSyntax
}

func coerceEnum(t Type, s string) (reflect.Value, error) {
	trimmed := strings.TrimSpace(s)
	if _, err := strconv.Atoi(trimmed); err == nil {
		return reflect.Value{}, enumIntegerError(s, t)
	}
	for i, symbol := range t.symbols {
		if strings.EqualFold(symbol, trimmed) {
			v := reflect.New(t.goType).Elem()
			v.SetInt(int64(i))
			return v, nil
		}
	}
	return reflect.Value{}, typeError(s, t)
}
