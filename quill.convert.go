package quill

import (
	"fmt"
	"reflect"
	"strconv"
)

// Conversion failure reasons
const (
	reasonNotNumber  = "expected a number"
	reasonNotInteger = "expected an integer"
	reasonNotList    = "expected a list or string"
	reasonArgCount   = "wrong number of arguments"
	reasonZeroDiv    = "division by zero"
	reasonBadRange   = "minimum is greater than maximum"
)

// anyToString converts a value to its printed form
func anyToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// anyToFloat converts numbers and numeric strings to float64
func anyToFloat(v any, entry string) (float64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, NewBadArgumentError(entry, reasonNotNumber)
		}
		return f, nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	}
	return 0, NewBadArgumentError(entry, reasonNotNumber)
}

// anyToInt converts numbers and numeric strings to int
func anyToInt(v any, entry string) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case string:
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, NewBadArgumentError(entry, reasonNotInteger)
		}
		return n, nil
	}
	f, err := anyToFloat(v, entry)
	if err != nil {
		return 0, NewBadArgumentError(entry, reasonNotInteger)
	}
	return int(f), nil
}

// toSlice converts slices and arrays to []any
func toSlice(v any, entry string) ([]any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return val, nil
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, NewBadArgumentError(entry, reasonNotList)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// getLength returns the length of strings (in runes), lists and maps
func getLength(v any, entry string) (int, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		return len([]rune(val)), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), nil
	}
	return 0, NewBadArgumentError(entry, reasonNotList)
}

// argAt returns args[i] or nil
func argAt(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// requireArgs fails unless lo <= len(args) <= hi; hi < 0 means no limit
func requireArgs(entry string, args []any, lo, hi int) error {
	if len(args) < lo || (hi >= 0 && len(args) > hi) {
		return NewBadArgumentError(entry, reasonArgCount)
	}
	return nil
}
