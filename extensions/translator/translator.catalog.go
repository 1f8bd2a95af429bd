package translator

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robfig/gettext/po"
	"golang.org/x/text/language"
)

// Catalog holds the translations of one locale
type Catalog struct {
	locale    string
	messages  map[string]po.Message
	pluralize po.PluralSelector
}

// ParseCatalog reads a .po file for locale
func ParseCatalog(locale string, r io.Reader) (*Catalog, error) {
	file, err := po.Parse(r)
	if err != nil {
		return nil, err
	}
	pluralize := file.Pluralize
	if pluralize == nil {
		pluralize = po.PluralSelectorForLanguage(locale)
	}
	c := &Catalog{
		locale:    locale,
		messages:  make(map[string]po.Message, len(file.Messages)),
		pluralize: pluralize,
	}
	for _, msg := range file.Messages {
		if msg.Id == "" {
			continue
		}
		c.messages[msg.Id] = msg
	}
	return c, nil
}

// Locale returns the catalog locale
func (c *Catalog) Locale() string {
	return c.locale
}

// Len returns the number of messages
func (c *Catalog) Len() int {
	return len(c.messages)
}

// Translate returns the translation of id, or id itself when the catalog has
// no non-empty translation
func (c *Catalog) Translate(id string) string {
	msg, ok := c.messages[id]
	if !ok || len(msg.Str) == 0 || msg.Str[0] == "" {
		return id
	}
	return msg.Str[0]
}

// TranslatePlural picks the plural form of id for n. Without a translation
// it falls back to id for n == 1 and plural otherwise.
func (c *Catalog) TranslatePlural(id, plural string, n int) string {
	msg, ok := c.messages[id]
	if ok && c.pluralize != nil {
		form := c.pluralize(n)
		if form >= 0 && form < len(msg.Str) && msg.Str[form] != "" {
			return msg.Str[form]
		}
	}
	if n == 1 {
		return id
	}
	return plural
}

// LoadDir loads every <locale>.po file in dir
func LoadDir(dir string) (map[string]*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	catalogs := make(map[string]*Catalog)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, CatalogExt) {
			continue
		}
		locale := strings.TrimSuffix(name, CatalogExt)
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		catalog, err := ParseCatalog(locale, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		catalogs[locale] = catalog
	}
	return catalogs, nil
}

// lookup finds the catalog for locale, falling back from region and script
// to the bare language
func lookup(catalogs map[string]*Catalog, locale string) (*Catalog, bool) {
	if c, ok := catalogs[locale]; ok {
		return c, true
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, false
	}
	for _, fb := range fallbacks(tag) {
		if c, ok := catalogs[fb.String()]; ok {
			return c, true
		}
	}
	return nil, false
}

// fallbacks lists the candidate tags for tag, most specific first
func fallbacks(tag language.Tag) []language.Tag {
	result := []language.Tag{}
	lang, script, region := tag.Raw()
	// The language package returns ZZ for an unspecified region, similar quirk for script.
	if region.String() != "ZZ" {
		t, _ := language.Compose(lang, script, region)
		result = append(result, t)
	}
	if script.String() != "Zzzz" {
		t, _ := language.Compose(lang, script)
		result = append(result, t)
	}
	t, _ := language.Compose(lang)
	result = append(result, t)
	return result
}

// locales returns the sorted locale names of catalogs
func locales(catalogs map[string]*Catalog) []string {
	out := make([]string, 0, len(catalogs))
	for locale := range catalogs {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}
