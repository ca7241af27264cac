package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalogs holds one dictionary per language code.
type Catalogs map[string]Dictionary

// LoadCatalogs reads every <lang>.yaml (or .yml) file in dir. Each file is a
// flat mapping from source string to translation.
func LoadCatalogs(dir string) (Catalogs, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog dir: %w", err)
	}

	catalogs := make(Catalogs)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		dict, err := loadDictionary(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		catalogs[strings.TrimSuffix(name, ext)] = dict
	}
	return catalogs, nil
}

func loadDictionary(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	dict := make(Dictionary)
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return dict, nil
}

// Lookup returns the dictionary for lang. The empty language and unknown
// languages report false.
func (c Catalogs) Lookup(lang string) (Dictionary, bool) {
	if lang == "" {
		return nil, false
	}
	d, ok := c[lang]
	return d, ok
}

// Languages returns the available language codes in sorted order
func (c Catalogs) Languages() []string {
	langs := make([]string, 0, len(c))
	for lang := range c {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
