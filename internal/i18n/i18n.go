// internal/i18n/i18n.go
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

var supportedLocales = []string{"en", "zh_CN"}

type I18n struct {
	mu           sync.RWMutex
	translations map[string]map[string]string
	defaultLang  string
}

var instance *I18n
var once sync.Once

// Initialize loads the catalogs once. An empty localesPath uses the
// catalogs compiled into the binary.
func Initialize(localesPath, defaultLang string) error {
	var err error
	once.Do(func() {
		if defaultLang == "" {
			defaultLang = "en"
		}
		instance = &I18n{
			translations: make(map[string]map[string]string),
			defaultLang:  defaultLang,
		}

		var fsys fs.FS
		if localesPath == "" {
			fsys, _ = fs.Sub(embeddedLocales, "locales")
		} else {
			fsys = os.DirFS(localesPath)
		}
		err = instance.LoadTranslations(fsys)
	})
	return err
}

func (i *I18n) LoadTranslations(fsys fs.FS) error {
	for _, lang := range supportedLocales {
		file := lang + ".json"

		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", file, err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", file, err)
		}

		i.mu.Lock()
		i.translations[lang] = translations
		i.mu.Unlock()
	}

	return nil
}

func (i *I18n) T(lang, key string, args ...interface{}) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if text, ok := i.lookup(lang, key); ok {
		return format(text, args)
	}

	// Fallback to default language
	if lang != i.defaultLang {
		if text, ok := i.lookup(i.defaultLang, key); ok {
			return format(text, args)
		}
	}

	// Return key if no translation found
	return key
}

func (i *I18n) lookup(lang, key string) (string, bool) {
	translations, exists := i.translations[lang]
	if !exists {
		return "", false
	}
	text, exists := translations[key]
	return text, exists
}

func format(text string, args []interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

// Global functions
func T(lang, key string, args ...interface{}) string {
	if instance != nil {
		return instance.T(lang, key, args...)
	}
	return key
}

// Normalize maps an Accept-Language tag to a supported locale.
func Normalize(tag string) string {
	tag = strings.TrimSpace(strings.Split(tag, ";")[0])
	switch strings.ToLower(strings.ReplaceAll(tag, "_", "-")) {
	case "zh", "zh-cn", "zh-hans", "zh-sg":
		return "zh_CN"
	case "en", "en-us", "en-gb":
		return "en"
	}
	return ""
}

func GetSupportedLanguages() []string {
	out := make([]string, len(supportedLocales))
	copy(out, supportedLocales)
	return out
}
