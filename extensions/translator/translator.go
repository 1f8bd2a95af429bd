// Package translator is a quill extension that translates template text with
// gettext .po catalogs.
//
//	{translate}Hello{/translate}
//	{$label|translate}
//	{=translate('item', $n, 'items')}
//
// The render locale comes from the "locale" parameter of an instance, or the
// default locale. With a static locale the translate tags are replaced with
// translated text at compile time.
package translator

import (
	"errors"
	"strings"

	"github.com/itsatony/go-quill"
	"go.uber.org/zap"
)

// Names contributed by the extension
const (
	ExtensionName  = "translator"
	TagTranslate   = "translate"
	FilterName     = "translate"
	FunctionName   = "translate"
	PassStatic     = "staticTranslation"
	KindTranslate  = "translate"
	StateKeyLocale = "translator.locale"
	ParamLocale    = "locale"
	CatalogExt     = ".po"
)

// Error messages
const (
	ErrMsgUnknownLocale = "no catalog for locale"
	ErrMsgDynamicText   = "translate body must be static text"
)

// Argument failure reasons
const (
	reasonArgCount = "expected a message, an optional count and an optional plural"
	reasonCount    = "count must be a number"
)

// Log messages
const (
	LogMsgLocaleSelected = "translation locale selected"
	LogFieldLocale       = "locale"
)

// TranslateNode is a {translate} block whose text is translated at render
// time or by the static pass
type TranslateNode struct {
	Position quill.Position
	Message  string
	Body     *quill.FragmentNode
}

func (n *TranslateNode) Kind() string                     { return KindTranslate }
func (n *TranslateNode) Pos() quill.Position              { return n.Position }
func (n *TranslateNode) Fragments() []*quill.FragmentNode { return []*quill.FragmentNode{n.Body} }

// Option configures a Translator
type Option func(*Translator)

// WithDefaultLocale sets the locale used when an instance has none
func WithDefaultLocale(locale string) Option {
	return func(t *Translator) {
		t.defaultLocale = locale
	}
}

// WithStaticLocale translates {translate} blocks at compile time
func WithStaticLocale(locale string) Option {
	return func(t *Translator) {
		t.staticLocale = locale
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Translator contributes the translate tag, filter, function and the static
// translation pass
type Translator struct {
	quill.BaseExtension

	catalogs      map[string]*Catalog
	defaultLocale string
	staticLocale  string
	logger        *zap.Logger
}

// New creates a translator over catalogs keyed by locale
func New(catalogs map[string]*Catalog, opts ...Option) *Translator {
	t := &Translator{
		catalogs: catalogs,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewFromDir creates a translator over the .po files in dir
func NewFromDir(dir string, opts ...Option) (*Translator, error) {
	catalogs, err := LoadDir(dir)
	if err != nil {
		return nil, quill.NewConfigError(quill.ErrMsgConfigRead, dir, err)
	}
	return New(catalogs, opts...), nil
}

// Name returns the extension name
func (t *Translator) Name() string { return ExtensionName }

// Locales returns the loaded locales
func (t *Translator) Locales() []string { return locales(t.catalogs) }

// BeforeCompile checks that the configured locales have catalogs
func (t *Translator) BeforeCompile(*quill.CompileState) error {
	for _, locale := range []string{t.defaultLocale, t.staticLocale} {
		if locale == "" {
			continue
		}
		if _, ok := lookup(t.catalogs, locale); !ok {
			return quill.NewConfigError(ErrMsgUnknownLocale, locale, nil)
		}
	}
	return nil
}

// BeforeRender stores the render locale on the instance
func (t *Translator) BeforeRender(inst *quill.Instance) {
	locale := t.defaultLocale
	if v, ok := inst.Param(ParamLocale); ok {
		if s, ok := v.(string); ok && s != "" {
			locale = s
		}
	}
	inst.SetState(StateKeyLocale, locale)
	t.logger.Debug(LogMsgLocaleSelected,
		zap.String(LogFieldLocale, locale),
		zap.String(quill.LogFieldTemplate, inst.Name()),
	)
}

// Tags returns the translate tag
func (t *Translator) Tags(*quill.CompileState) *quill.Table[quill.TagHandler] {
	return quill.NewTable[quill.TagHandler]().Set(TagTranslate, quill.SimpleTag(translateTag))
}

// Filters returns the translate filter: {$s|translate} or {$s|translate:$n,'plural'}
func (t *Translator) Filters(*quill.CompileState) *quill.Table[quill.Callable] {
	return quill.NewTable[quill.Callable]().Set(FilterName, quill.Pure(t.translate))
}

// Functions returns the translate function: translate(message, n, plural)
func (t *Translator) Functions(*quill.CompileState) *quill.Table[quill.Callable] {
	return quill.NewTable[quill.Callable]().Set(FunctionName, quill.Pure(t.translate))
}

// Passes returns the static translation pass
func (t *Translator) Passes(*quill.CompileState) *quill.Table[quill.PassFunc] {
	return quill.NewTable[quill.PassFunc]().Set(PassStatic, quill.InPlace(t.staticPass))
}

// Translate translates message for the locale of inst
func (t *Translator) Translate(inst *quill.Instance, message string) string {
	catalog, ok := lookup(t.catalogs, t.localeOf(inst))
	if !ok {
		return message
	}
	return catalog.Translate(message)
}

func (t *Translator) translate(inst *quill.Instance, args ...any) (any, error) {
	if len(args) == 0 || len(args) > 3 {
		return nil, quill.NewBadArgumentError(FunctionName, reasonArgCount)
	}
	message, ok := args[0].(string)
	if !ok {
		return args[0], nil
	}
	if len(args) == 1 {
		return t.Translate(inst, message), nil
	}

	n, ok := toInt(args[1])
	if !ok {
		return nil, quill.NewBadArgumentError(FunctionName, reasonCount)
	}
	plural := message
	if len(args) == 3 {
		if s, ok := args[2].(string); ok {
			plural = s
		}
	}
	catalog, found := lookup(t.catalogs, t.localeOf(inst))
	if !found {
		if n == 1 {
			return message, nil
		}
		return plural, nil
	}
	return catalog.TranslatePlural(message, plural, n), nil
}

func (t *Translator) localeOf(inst *quill.Instance) string {
	if inst != nil {
		if v, ok := inst.State(StateKeyLocale); ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return t.defaultLocale
}

// staticPass replaces translate blocks with translated text when a static
// locale is set
func (t *Translator) staticPass(root *quill.TemplateNode) error {
	if t.staticLocale == "" {
		return nil
	}
	catalog, ok := lookup(t.catalogs, t.staticLocale)
	if !ok {
		return errors.New(ErrMsgUnknownLocale + ": " + t.staticLocale)
	}
	quill.WalkFragments(root, func(f *quill.FragmentNode) {
		for i, child := range f.Children {
			if node, ok := child.(*TranslateNode); ok {
				f.Children[i] = &quill.TextNode{Position: node.Position, Content: catalog.Translate(node.Message)}
			}
		}
	})
	return nil
}

// translateTag handles {translate}text{/translate}
func translateTag(tag *quill.Tag, p *quill.Parser) (quill.Node, error) {
	if err := tag.ExpectNoArguments(); err != nil {
		return nil, err
	}
	if err := tag.ExpectNotVoid(); err != nil {
		return nil, err
	}
	body, _, err := p.ParseTagBody(tag)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, child := range body.Children {
		text, ok := child.(*quill.TextNode)
		if !ok {
			return nil, quill.NewTagError(ErrMsgDynamicText, tag.Name, child.Pos())
		}
		sb.WriteString(text.Content)
	}
	return &TranslateNode{Position: tag.Position, Message: sb.String(), Body: body}, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
