package quill

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Core filter names
const (
	FilterUpper      = "upper"
	FilterLower      = "lower"
	FilterCapitalize = "capitalize"
	FilterFirstUpper = "firstUpper"
	FilterWebalize   = "webalize"
	FilterEscapeURL  = "escapeUrl"
	FilterNumber     = "number"
	FilterTrim       = "trim"
	FilterTruncate   = "truncate"
	FilterLength     = "length"
	FilterReverse    = "reverse"
	FilterReplace    = "replace"
	FilterRepeat     = "repeat"
	FilterImplode    = "implode"
	FilterJoin       = "join"
	FilterExplode    = "explode"
	FilterSplit      = "split"
	FilterFirst      = "first"
	FilterLast       = "last"
	FilterPadLeft    = "padLeft"
	FilterPadRight   = "padRight"
	FilterRound      = "round"
	FilterFloor      = "floor"
	FilterCeil       = "ceil"
	FilterClamp      = "clamp"
)

// Filter defaults
const (
	defaultTruncateSuffix = "…"
	defaultPad            = " "
	webalizeSeparator     = "-"
)

// coreFilters returns the filters of the core extension
func coreFilters() *Table[Callable] {
	return NewTable[Callable]().
		Set(FilterUpper, Gated(CapabilityUnicode, stringFilter(FilterUpper, func(s string) string {
			return cases.Upper(language.Und).String(s)
		}))).
		Set(FilterLower, Gated(CapabilityUnicode, stringFilter(FilterLower, func(s string) string {
			return cases.Lower(language.Und).String(s)
		}))).
		Set(FilterCapitalize, Gated(CapabilityUnicode, stringFilter(FilterCapitalize, func(s string) string {
			return cases.Title(language.Und).String(s)
		}))).
		Set(FilterFirstUpper, Gated(CapabilityUnicode, stringFilter(FilterFirstUpper, firstUpper))).
		Set(FilterWebalize, Gated(CapabilityTransliteration, webalizeFilter)).
		Set(FilterEscapeURL, Host(RoutineRawURLEncode)).
		Set(FilterNumber, Host(RoutineNumberFormat)).
		Set(FilterTrim, Pure(trimFilter)).
		Set(FilterTruncate, Pure(truncateFilter)).
		Set(FilterLength, Pure(lengthFilter)).
		Set(FilterReverse, Pure(reverseFilter)).
		Set(FilterReplace, Pure(replaceFilter)).
		Set(FilterRepeat, Pure(repeatFilter)).
		Set(FilterImplode, Pure(implodeFilter)).
		Set(FilterJoin, Pure(implodeFilter)).
		Set(FilterExplode, Pure(explodeFilter)).
		Set(FilterSplit, Pure(explodeFilter)).
		Set(FilterFirst, Pure(firstFunc)).
		Set(FilterLast, Pure(lastFunc)).
		Set(FilterPadLeft, Pure(padFilter(FilterPadLeft, true))).
		Set(FilterPadRight, Pure(padFilter(FilterPadRight, false))).
		Set(FilterRound, Pure(roundFilter(FilterRound, math.Round))).
		Set(FilterFloor, Pure(roundFilter(FilterFloor, math.Floor))).
		Set(FilterCeil, Pure(roundFilter(FilterCeil, math.Ceil))).
		Set(FilterClamp, Pure(clampFunc))
}

// defaultHostRoutines returns the host routines every engine starts with
func defaultHostRoutines() map[string]HostRoutine {
	return map[string]HostRoutine{
		RoutineRawURLEncode: rawURLEncode,
		RoutineNumberFormat: numberFormat,
	}
}

// stringFilter adapts a string transformation taking no arguments
func stringFilter(entry string, fn func(string) string) CallFunc {
	return func(_ *Instance, args ...any) (any, error) {
		if err := requireArgs(entry, args, 1, 1); err != nil {
			return nil, err
		}
		return fn(anyToString(args[0])), nil
	}
}

func firstUpper(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(s[:size]) + s[size:]
}

// webalizeFilter turns text into a URL slug: {$title|webalize}, with optional
// extra allowed characters and a lowercase flag
func webalizeFilter(_ *Instance, args ...any) (any, error) {
	if err := requireArgs(FilterWebalize, args, 1, 3); err != nil {
		return nil, err
	}
	s := anyToString(args[0])
	extra := anyToString(argAt(args, 1))
	lower := len(args) < 3 || isTruthy(args[2])

	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(strip, s)
	if err != nil {
		return nil, NewRuntimeError(ErrMsgCallFailed, FilterWebalize, err)
	}
	allowed := `a-zA-Z0-9`
	if lower {
		ascii = strings.ToLower(ascii)
		allowed = `a-z0-9`
	}
	re, err := regexp.Compile(`[^` + allowed + regexp.QuoteMeta(extra) + `]+`)
	if err != nil {
		return nil, NewRuntimeError(ErrMsgCallFailed, FilterWebalize, err)
	}
	return strings.Trim(re.ReplaceAllString(ascii, webalizeSeparator), webalizeSeparator), nil
}

func trimFilter(_ *Instance, args ...any) (any, error) {
	if err := requireArgs(FilterTrim, args, 1, 2); err != nil {
		return nil, err
	}
	s := anyToString(args[0])
	if len(args) == 2 {
		return strings.Trim(s, anyToString(args[1])), nil
	}
	return strings.TrimSpace(s), nil
}

// truncateFilter shortens text to at most length runes including the suffix,
// preferring to cut at a word boundary
func truncateFilter(_ *Instance, args ...any) (any, error) {
	if err := requireArgs(FilterTruncate, args, 2, 3); err != nil {
		return nil, err
	}
	s := []rune(anyToString(args[0]))
	limit, err := anyToInt(args[1], FilterTruncate)
	if err != nil {
		return nil, err
	}
	suffix := defaultTruncateSuffix
	if len(args) == 3 {
		suffix = anyToString(args[2])
	}
	if len(s) <= limit {
		return string(s), nil
	}

	keep := limit - utf8.RuneCountInString(suffix)
	if keep < 1 {
		return suffix, nil
	}
	cut := keep
	if !unicode.IsSpace(s[keep]) {
		for i := keep - 1; i > 0; i-- {
			if unicode.IsSpace(s[i]) {
				cut = i
				break
			}
		}
	}
	return strings.TrimRightFunc(string(s[:cut]), unicode.IsSpace) + suffix, nil
}

func lengthFilter(_ *Instance, args ...any) (any, error) {
	if err := requireArgs(FilterLength, args, 1, 1); err != nil {
		return nil, err
	}
	return getLength(args[0], FilterLength)
}

func reverseFilter(_ *Instance, args ...any) (any, error) {
	if err := requireArgs(FilterReverse, args, 1, 1); err != nil {
		return nil, err
	}
	if s, ok := args[0].(string); ok {
		r := []rune(s)
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return string(r), nil
	}
	list, err := toSlice(args[0], FilterReverse)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(list))
	for i, v := range list {
		out[len(list)-1-i] = v
	}
	return out, nil
}

func replaceFilter(_ *Instance, args ...any) (any, error) {
	if err := requireArgs(FilterReplace, args, 2, 3); err != nil {
		return nil, err
	}
	return strings.ReplaceAll(anyToString(args[0]), anyToString(args[1]), anyToString(argAt(args, 2))), nil
}

func repeatFilter(_ *Instance, args ...any) (any, error) {
	if err := requireArgs(FilterRepeat, args, 2, 2); err != nil {
		return nil, err
	}
	count, err := anyToInt(args[1], FilterRepeat)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		count = 0
	}
	return strings.Repeat(anyToString(args[0]), count), nil
}

func implodeFilter(_ *Instance, args ...any) (any, error) {
	if err := requireArgs(FilterImplode, args, 1, 2); err != nil {
		return nil, err
	}
	list, err := toSlice(args[0], FilterImplode)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = anyToString(v)
	}
	return strings.Join(parts, anyToString(argAt(args, 1))), nil
}

func explodeFilter(_ *Instance, args ...any) (any, error) {
	if err := requireArgs(FilterExplode, args, 1, 2); err != nil {
		return nil, err
	}
	parts := strings.Split(anyToString(args[0]), anyToString(argAt(args, 1)))
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

func padFilter(entry string, left bool) CallFunc {
	return func(_ *Instance, args ...any) (any, error) {
		if err := requireArgs(entry, args, 2, 3); err != nil {
			return nil, err
		}
		s := anyToString(args[0])
		length, err := anyToInt(args[1], entry)
		if err != nil {
			return nil, err
		}
		pad := defaultPad
		if len(args) == 3 {
			pad = anyToString(args[2])
		}
		missing := length - utf8.RuneCountInString(s)
		if missing <= 0 || pad == "" {
			return s, nil
		}
		padding := []rune(strings.Repeat(pad, missing/utf8.RuneCountInString(pad)+1))[:missing]
		if left {
			return string(padding) + s, nil
		}
		return s + string(padding), nil
	}
}

func roundFilter(entry string, fn func(float64) float64) CallFunc {
	return func(_ *Instance, args ...any) (any, error) {
		if err := requireArgs(entry, args, 1, 2); err != nil {
			return nil, err
		}
		n, err := anyToFloat(args[0], entry)
		if err != nil {
			return nil, err
		}
		precision, err := anyToInt(argAt(args, 1), entry)
		if err != nil {
			return nil, err
		}
		scale := math.Pow(10, float64(precision))
		return fn(n*scale) / scale, nil
	}
}

// rawURLEncode percent-encodes everything except unreserved characters
func rawURLEncode(args ...any) (any, error) {
	if err := requireArgs(RoutineRawURLEncode, args, 1, 1); err != nil {
		return nil, err
	}
	return strings.ReplaceAll(url.QueryEscape(anyToString(args[0])), "+", "%20"), nil
}

// numberFormat formats a number with grouped thousands:
// number_format(value, decimals = 0, decimalPoint = ".", thousandsSeparator = ",")
func numberFormat(args ...any) (any, error) {
	if err := requireArgs(RoutineNumberFormat, args, 1, 4); err != nil {
		return nil, err
	}
	n, err := anyToFloat(args[0], RoutineNumberFormat)
	if err != nil {
		return nil, err
	}
	decimals, err := anyToInt(argAt(args, 1), RoutineNumberFormat)
	if err != nil {
		return nil, err
	}
	if decimals < 0 {
		decimals = 0
	}
	point, sep := ".", ","
	if len(args) > 2 {
		point = anyToString(args[2])
	}
	if len(args) > 3 {
		sep = anyToString(args[3])
	}

	scale := math.Pow(10, float64(decimals))
	rounded := math.Round(math.Abs(n)*scale) / scale
	whole, digits, _ := strings.Cut(strconv.FormatFloat(rounded, 'f', decimals, 64), ".")
	frac := ""
	if decimals > 0 {
		frac = point + digits
	}

	var grouped strings.Builder
	for i, ch := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteString(sep)
		}
		grouped.WriteRune(ch)
	}
	sign := ""
	if n < 0 && rounded != 0 {
		sign = "-"
	}
	return sign + grouped.String() + frac, nil
}
