// Package i18n exposes the localized string table used for rendering posts,
// settings forms and user-facing warnings.
package i18n

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Catalog resolves string keys to text.
type Catalog struct {
	trans ut.Translator
}

// New builds the English catalog.
func New() (*Catalog, error) {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("english translator not registered")
	}

	for key, text := range english {
		if err := trans.Add(key, text, false); err != nil {
			return nil, fmt.Errorf("register string %q: %w", key, err)
		}
	}
	for key, forms := range englishCardinals {
		if err := trans.AddCardinal(key, forms.one, locales.PluralRuleOne, false); err != nil {
			return nil, fmt.Errorf("register string %q: %w", key, err)
		}
		if err := trans.AddCardinal(key, forms.other, locales.PluralRuleOther, false); err != nil {
			return nil, fmt.Errorf("register string %q: %w", key, err)
		}
	}

	return &Catalog{trans: trans}, nil
}

// MustNew is New for package-level initialisation.
func MustNew() *Catalog {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the text for key with {n} placeholders replaced by params.
// Unknown keys render as [[key]] so missing strings are visible.
func (c *Catalog) Get(key string, params ...string) string {
	text, err := c.trans.T(key, params...)
	if err != nil {
		return "[[" + key + "]]"
	}
	return text
}

// Count returns the plural form of key matching n, with n as the {0} param.
func (c *Catalog) Count(key string, n int) string {
	text, err := c.trans.C(key, float64(n), 0, c.trans.FmtNumber(float64(n), 0))
	if err != nil {
		return "[[" + key + "]]"
	}
	return text
}

// Has reports whether key is in the table.
func (c *Catalog) Has(key string) bool {
	_, ok := english[key]
	if ok {
		return true
	}
	_, ok = englishCardinals[key]
	return ok
}

// RegisterValidator installs English messages for validator tags and makes
// field errors use JSON names.
func (c *Catalog) RegisterValidator(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return en_translations.RegisterDefaultTranslations(v, c.trans)
}

// ValidationMessages flattens validator errors into field -> message.
func (c *Catalog) ValidationMessages(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(c.trans)
	}
	return out
}
