package quill

import (
	"reflect"
)

// Core function names
const (
	FunctionClamp       = "clamp"
	FunctionDivisibleBy = "divisibleBy"
	FunctionEven        = "even"
	FunctionOdd         = "odd"
	FunctionFirst       = "first"
	FunctionLast        = "last"
	FunctionSlice       = "slice"
	FunctionHasBlock    = "hasBlock"
)

// coreFunctions returns the functions of the core extension
func coreFunctions() *Table[Callable] {
	return NewTable[Callable]().
		Set(FunctionClamp, Pure(clampFunc)).
		Set(FunctionDivisibleBy, Pure(divisibleByFunc)).
		Set(FunctionEven, Pure(parityFunc(FunctionEven, 0))).
		Set(FunctionOdd, Pure(parityFunc(FunctionOdd, 1))).
		Set(FunctionFirst, Pure(firstFunc)).
		Set(FunctionLast, Pure(lastFunc)).
		Set(FunctionSlice, Pure(sliceFunc)).
		Set(FunctionHasBlock, Pure(hasBlockFunc))
}

func clampFunc(_ *Instance, args ...any) (any, error) {
	if err := requireArgs(FunctionClamp, args, 3, 3); err != nil {
		return nil, err
	}
	var nums [3]float64
	for i, a := range args {
		n, err := anyToFloat(a, FunctionClamp)
		if err != nil {
			return nil, err
		}
		nums[i] = n
	}
	value, lo, hi := nums[0], nums[1], nums[2]
	if lo > hi {
		return nil, NewBadArgumentError(FunctionClamp, reasonBadRange)
	}
	return min(max(value, lo), hi), nil
}

func divisibleByFunc(_ *Instance, args ...any) (any, error) {
	if err := requireArgs(FunctionDivisibleBy, args, 2, 2); err != nil {
		return nil, err
	}
	value, err := anyToInt(args[0], FunctionDivisibleBy)
	if err != nil {
		return nil, err
	}
	divisor, err := anyToInt(args[1], FunctionDivisibleBy)
	if err != nil {
		return nil, err
	}
	if divisor == 0 {
		return nil, NewBadArgumentError(FunctionDivisibleBy, reasonZeroDiv)
	}
	return value%divisor == 0, nil
}

func parityFunc(entry string, remainder int) CallFunc {
	return func(_ *Instance, args ...any) (any, error) {
		if err := requireArgs(entry, args, 1, 1); err != nil {
			return nil, err
		}
		n, err := anyToInt(args[0], entry)
		if err != nil {
			return nil, err
		}
		r := n % 2
		if r < 0 {
			r = -r
		}
		return r == remainder, nil
	}
}

// firstFunc returns the first rune of a string or the first item of a list
func firstFunc(_ *Instance, args ...any) (any, error) {
	if err := requireArgs(FunctionFirst, args, 1, 1); err != nil {
		return nil, err
	}
	if s, ok := args[0].(string); ok {
		for _, r := range s {
			return string(r), nil
		}
		return "", nil
	}
	list, err := toSlice(args[0], FunctionFirst)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// lastFunc returns the last rune of a string or the last item of a list
func lastFunc(_ *Instance, args ...any) (any, error) {
	if err := requireArgs(FunctionLast, args, 1, 1); err != nil {
		return nil, err
	}
	if s, ok := args[0].(string); ok {
		r := []rune(s)
		if len(r) == 0 {
			return "", nil
		}
		return string(r[len(r)-1]), nil
	}
	list, err := toSlice(args[0], FunctionLast)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[len(list)-1], nil
}

// sliceFunc extracts part of a string or list: slice(value, start, length).
// Negative start counts from the end; a missing length takes the rest.
func sliceFunc(_ *Instance, args ...any) (any, error) {
	if err := requireArgs(FunctionSlice, args, 2, 3); err != nil {
		return nil, err
	}
	start, err := anyToInt(args[1], FunctionSlice)
	if err != nil {
		return nil, err
	}
	length := -1
	if len(args) == 3 && args[2] != nil {
		if length, err = anyToInt(args[2], FunctionSlice); err != nil {
			return nil, err
		}
	}

	if s, ok := args[0].(string); ok {
		r := []rune(s)
		lo, hi := sliceBounds(len(r), start, length)
		return string(r[lo:hi]), nil
	}
	list, err := toSlice(args[0], FunctionSlice)
	if err != nil {
		return nil, err
	}
	lo, hi := sliceBounds(len(list), start, length)
	out := make([]any, hi-lo)
	copy(out, list[lo:hi])
	return out, nil
}

// sliceBounds clamps a start/length pair to [0, n]
func sliceBounds(n, start, length int) (int, int) {
	if start < 0 {
		start = max(n+start, 0)
	}
	start = min(start, n)
	end := n
	if length >= 0 {
		end = min(start+length, n)
	}
	return start, end
}

// hasBlockFunc reports whether the rendering template defines a block
func hasBlockFunc(inst *Instance, args ...any) (any, error) {
	if err := requireArgs(FunctionHasBlock, args, 1, 1); err != nil {
		return nil, err
	}
	return inst.HasBlock(anyToString(args[0])), nil
}

// isTruthy determines the truthiness of a value
// Truthiness rules:
// - nil -> false
// - bool -> value
// - string -> non-empty and not "0" or "false"
// - int/float -> n != 0
// - slice/map -> len(x) > 0
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != "" && val != "false" && val != "0"
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}
