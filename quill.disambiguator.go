package quill

import (
	"regexp"
	"sort"
)

// Variant is the node shape a polymorphic tag resolves to
type Variant uint8

const (
	// VariantResource refers to another template resource, e.g. a file
	VariantResource Variant = iota
	// VariantReference refers to a named item of the current template, e.g. a block
	VariantReference
)

// String returns the variant name
func (v Variant) String() string {
	if v == VariantReference {
		return "reference"
	}
	return "resource"
}

// referencePattern matches string arguments that name a reference
var referencePattern = regexp.MustCompile(`^[\w-]+$`)

// Disambiguator resolves one tag name to one of two node shapes by looking at
// its arguments. Resolution never consumes arguments: the chosen handler
// parses the same arguments from the start.
type Disambiguator struct {
	Keywords map[string]Variant // Explicit leading keywords, e.g. "file" and "block"
	Sigil    string             // Leading token that always means a reference, e.g. "#"
	Pattern  *regexp.Regexp     // String values matching it are references
}

// NewIncludeDisambiguator returns the disambiguator of the include tag
func NewIncludeDisambiguator() *Disambiguator {
	return &Disambiguator{
		Keywords: map[string]Variant{
			KeywordFile:  VariantResource,
			KeywordBlock: VariantReference,
		},
		Sigil:   SigilBlockRef,
		Pattern: referencePattern,
	}
}

// Resolve picks the variant for tag. In order: an explicit keyword decides;
// a leading sigil means reference; otherwise the first argument is parsed as
// a string or expression and a string matching Pattern means reference.
// Everything else, including arguments that fail to parse, is a resource.
// The argument cursor is rewound before returning.
func (d *Disambiguator) Resolve(tag *Tag) (Variant, error) {
	if err := tag.ExpectArguments(); err != nil {
		return VariantResource, err
	}
	start := tag.Args.Pos()
	defer tag.Args.Seek(start)

	if tok, ok := tag.Args.TryConsumeBeforeUnquoted(d.keywords()...); ok {
		return d.Keywords[tok.Text], nil
	}
	if d.Sigil != "" && tag.Args.Peek().Is(d.Sigil) {
		return VariantReference, nil
	}

	first, err := tag.Args.ParseUnquotedStringOrExpression()
	if err != nil {
		return VariantResource, nil
	}
	if str, ok := first.(*StringNode); ok && d.pattern().MatchString(str.Value) {
		return VariantReference, nil
	}
	return VariantResource, nil
}

// Split returns a tag handler that resolves the tag and delegates to the
// handler of the chosen variant
func (d *Disambiguator) Split(reference, resource TagFunc) TagFunc {
	return func(tag *Tag, p *Parser) (Node, error) {
		variant, err := d.Resolve(tag)
		if err != nil {
			return nil, err
		}
		if variant == VariantReference {
			return reference(tag, p)
		}
		return resource(tag, p)
	}
}

// keywords returns the keyword texts in a stable order
func (d *Disambiguator) keywords() []string {
	out := make([]string, 0, len(d.Keywords))
	for k := range d.Keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (d *Disambiguator) pattern() *regexp.Regexp {
	if d.Pattern == nil {
		return referencePattern
	}
	return d.Pattern
}
