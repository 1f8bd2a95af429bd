package quill

import (
	"reflect"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Generator turns a compiled template into output text
type Generator interface {
	Generate(compiled *Compiled) ([]byte, error)
	// FileExtension is used for files handed to the linter, e.g. ".yaml"
	FileExtension() string
}

// YAMLGenerator writes the template tree as YAML. Nodes become mappings with
// a kind and a line; zero-valued fields are left out.
type YAMLGenerator struct{}

// NewYAMLGenerator creates the YAML tree generator
func NewYAMLGenerator() *YAMLGenerator {
	return &YAMLGenerator{}
}

// FileExtension returns ".yaml"
func (g *YAMLGenerator) FileExtension() string { return DefaultGeneratedExt }

// Generate marshals the tree of compiled
func (g *YAMLGenerator) Generate(compiled *Compiled) ([]byte, error) {
	doc := map[string]any{
		"name": compiled.Name,
		"tree": TreeValue(compiled.Root),
	}
	if len(compiled.Blocks) > 0 {
		doc["blocks"] = compiled.Blocks
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, NewEngineError(ErrMsgGenerateFailed, err)
	}
	return out, nil
}

var positionType = reflect.TypeOf(Position{})

// TreeValue converts a node tree into plain maps and slices
func TreeValue(node Node) any {
	if isNilNode(node) {
		return nil
	}
	return treeValue(reflect.ValueOf(node))
}

func treeValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return treeValue(v.Elem())
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		if v.Elem().Kind() == reflect.Struct {
			return structValue(v)
		}
		return treeValue(v.Elem())
	case reflect.Slice:
		if v.Len() == 0 {
			return nil
		}
		out := make([]any, 0, v.Len())
		for i := range v.Len() {
			out = append(out, treeValue(v.Index(i)))
		}
		return out
	case reflect.String:
		if v.Len() == 0 {
			return nil
		}
		return v.String()
	case reflect.Bool:
		if !v.Bool() {
			return nil
		}
		return true
	}
	return v.Interface()
}

func structValue(ptr reflect.Value) map[string]any {
	out := make(map[string]any)
	if node, ok := ptr.Interface().(Node); ok {
		out["kind"] = node.Kind()
		out["line"] = node.Pos().Line
	}
	s := ptr.Elem()
	t := s.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() || field.Type == positionType {
			continue
		}
		if value := treeValue(s.Field(i)); value != nil {
			out[lowerFirst(field.Name)] = value
		}
	}
	return out
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
