// Package locale supplies translated UI text by language code and dotted key
// path. Dictionaries are nested YAML documents, one per language, named
// <language-tag>.yaml.
package locale

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when no default is configured.
const DefaultLanguage = "en"

var (
	// ErrNoDictionaries is returned when the filesystem holds no dictionaries.
	ErrNoDictionaries = errors.New("no dictionaries found")
	// ErrDefaultMissing is returned when the default language has no dictionary.
	ErrDefaultMissing = errors.New("default language has no dictionary")
)

//go:embed dict/*.yaml
var embeddedDicts embed.FS

// Provider looks up translated text. It is immutable after construction and
// safe for concurrent use.
type Provider struct {
	defaultTag language.Tag
	tags       []language.Tag
	dicts      map[string]map[string]string
	matcher    language.Matcher
	catalog    *catalog.Builder
}

// LoadEmbedded builds a Provider from the dictionaries shipped with this
// package.
func LoadEmbedded(defaultLang string) (*Provider, error) {
	sub, err := fs.Sub(embeddedDicts, "dict")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub, defaultLang)
}

// LoadFS builds a Provider from every *.yaml file at the root of fsys.
func LoadFS(fsys fs.FS, defaultLang string) (*Provider, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob dictionaries: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoDictionaries
	}
	sort.Strings(files)

	dicts := make(map[string]map[string]string, len(files))
	for _, file := range files {
		tag, err := language.Parse(strings.TrimSuffix(path.Base(file), path.Ext(file)))
		if err != nil {
			return nil, fmt.Errorf("dictionary %s: %w", file, err)
		}
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read dictionary %s: %w", file, err)
		}
		entries, err := parseDictionary(data)
		if err != nil {
			return nil, fmt.Errorf("parse dictionary %s: %w", file, err)
		}
		dicts[tag.String()] = entries
	}
	return New(dicts, defaultLang)
}

// New builds a Provider from flattened dictionaries keyed by language tag.
func New(dicts map[string]map[string]string, defaultLang string) (*Provider, error) {
	if len(dicts) == 0 {
		return nil, ErrNoDictionaries
	}
	if strings.TrimSpace(defaultLang) == "" {
		defaultLang = DefaultLanguage
	}
	defaultTag, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("default language %q: %w", defaultLang, err)
	}

	p := &Provider{
		defaultTag: defaultTag,
		dicts:      make(map[string]map[string]string, len(dicts)),
		catalog:    catalog.NewBuilder(catalog.Fallback(defaultTag)),
	}
	langs := make([]string, 0, len(dicts))
	for lang := range dicts {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	for _, lang := range langs {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("dictionary language %q: %w", lang, err)
		}
		entries := make(map[string]string, len(dicts[lang]))
		for key, value := range dicts[lang] {
			entries[key] = value
			if err := p.catalog.SetString(tag, key, value); err != nil {
				return nil, fmt.Errorf("register %s/%s: %w", tag, key, err)
			}
		}
		p.dicts[tag.String()] = entries
		if tag != defaultTag {
			p.tags = append(p.tags, tag)
		}
	}
	if _, ok := p.dicts[defaultTag.String()]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrDefaultMissing, defaultTag)
	}
	// The matcher falls back to its first tag.
	p.tags = append([]language.Tag{defaultTag}, p.tags...)
	p.matcher = language.NewMatcher(p.tags)
	return p, nil
}

// Default returns the default language code.
func (p *Provider) Default() string {
	return p.defaultTag.String()
}

// Supported returns the supported language codes, default first.
func (p *Provider) Supported() []string {
	out := make([]string, 0, len(p.tags))
	for _, tag := range p.tags {
		out = append(out, tag.String())
	}
	return out
}

// Match picks the supported language closest to an Accept-Language style
// value (a single tag also works). Unparseable or unmatched input yields the
// default language.
func (p *Provider) Match(accept string) string {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return p.Default()
	}
	if _, ok := p.dicts[accept]; ok {
		return accept
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return p.Default()
	}
	_, idx, conf := p.matcher.Match(tags...)
	if conf == language.No {
		return p.Default()
	}
	return p.tags[idx].String()
}

// Text returns the translation of keyPath in lang, falling back to the
// default language and then to keyPath itself.
func (p *Provider) Text(lang, keyPath string) string {
	keyPath = strings.TrimSpace(keyPath)
	if keyPath == "" {
		return ""
	}
	if value, ok := p.dicts[p.Match(lang)][keyPath]; ok {
		return value
	}
	if value, ok := p.dicts[p.Default()][keyPath]; ok {
		return value
	}
	return keyPath
}

// Sprintf formats the translation of keyPath in lang with args. Missing keys
// follow the same fallback as Text.
func (p *Provider) Sprintf(lang, keyPath string, args ...any) string {
	tag := language.Make(p.Match(lang))
	if _, ok := p.dicts[tag.String()][keyPath]; !ok {
		if _, ok := p.dicts[p.Default()][keyPath]; !ok {
			return keyPath
		}
		tag = p.defaultTag
	}
	return p.Printer(tag.String()).Sprintf(keyPath, args...)
}

// Printer returns a message printer bound to this provider's dictionaries.
func (p *Provider) Printer(lang string) *message.Printer {
	return message.NewPrinter(language.Make(p.Match(lang)), message.Catalog(p.catalog))
}

func parseDictionary(data []byte) (map[string]string, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	if err := flatten("", root, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for key, value := range node {
		key = strings.TrimSpace(key)
		if key == "" {
			return errors.New("blank key")
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			if err := flatten(key, v, out); err != nil {
				return err
			}
		case nil:
			return fmt.Errorf("key %q has no value", key)
		case []any:
			return fmt.Errorf("key %q: lists are not supported", key)
		default:
			out[key] = fmt.Sprint(v)
		}
	}
	return nil
}
