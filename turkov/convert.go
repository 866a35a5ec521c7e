package turkov

import (
	"fmt"
	"strconv"
	"strings"
)

// Device firmware is inconsistent about value encodings: depending on the
// model the same key may arrive as a number, a numeric string or a boolean.
// The converters below accept all observed encodings.

func asFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as number", v)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to number", value)
	}
}

func asBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1":
			return true, nil
		case "false", "off", "0":
			return false, nil
		}
		return false, fmt.Errorf("cannot parse %q as boolean", v)
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot convert %T to boolean", value)
	}
}

func asString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("cannot convert %T to string", value)
	}
}

func setBool(dst **bool, value any) (bool, error) {
	parsed, err := asBool(value)
	if err != nil {
		return false, err
	}
	if *dst != nil && **dst == parsed {
		return false, nil
	}
	*dst = &parsed
	return true, nil
}

func setString(dst *string, value any) (bool, error) {
	parsed, err := asString(value)
	if err != nil {
		return false, err
	}
	if *dst == parsed {
		return false, nil
	}
	*dst = parsed
	return true, nil
}

// setFloat stores value divided by scale; readings like temperatures arrive
// in tenths of a unit.
func setFloat(dst **float64, value any, scale float64) (bool, error) {
	parsed, err := asFloat(value)
	if err != nil {
		return false, err
	}
	parsed /= scale
	if *dst != nil && **dst == parsed {
		return false, nil
	}
	*dst = &parsed
	return true, nil
}
