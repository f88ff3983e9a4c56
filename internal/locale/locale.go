package locale

import (
	"embed"
	"fmt"
	"path"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed messages/*.yaml
var messageFiles embed.FS

const DefaultLanguage = "es"

// Catalog resolves message ids against the embedded YAML catalogs.
type Catalog struct {
	bundle      *i18n.Bundle
	defaultLang string
}

func NewCatalog(defaultLang string) (*Catalog, error) {
	if defaultLang == "" {
		defaultLang = DefaultLanguage
	}
	tag, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("parse default language %q: %w", defaultLang, err)
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	entries, err := messageFiles.ReadDir("messages")
	if err != nil {
		return nil, fmt.Errorf("read message catalogs: %w", err)
	}
	for _, entry := range entries {
		name := path.Join("messages", entry.Name())
		data, err := messageFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}

	return &Catalog{bundle: bundle, defaultLang: defaultLang}, nil
}

// MustCatalog is NewCatalog for process start-up.
func MustCatalog(defaultLang string) *Catalog {
	c, err := NewCatalog(defaultLang)
	if err != nil {
		panic(err)
	}
	return c
}

// Localize returns the message in lang, falling back to the default
// language. Unknown ids yield an empty string.
func (c *Catalog) Localize(lang, messageID string) string {
	localizer := i18n.NewLocalizer(c.bundle, lang, c.defaultLang)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return ""
	}
	return msg
}
