// Package i18n translates user-visible strings and keeps registered
// elements in sync when the active dictionary is replaced.
package i18n

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// Dictionary maps source strings to their translation.
type Dictionary map[string]string

// Element is a piece of text whose source string is retained so it can be
// re-rendered whenever the dictionary changes.
type Element struct {
	source string
	set    func(string)
}

// Source returns the untranslated text
func (e *Element) Source() string {
	return e.source
}

// Translator owns the active dictionary.
type Translator struct {
	mu          sync.RWMutex
	dict        Dictionary
	elements    []*Element
	subscribers []func()
	logger      *slog.Logger
}

// New creates a Translator with no dictionary loaded. Until one is loaded,
// every key translates to itself.
func New(logger *slog.Logger) *Translator {
	return &Translator{
		logger: logger.With(slog.String("component", "i18n")),
	}
}

// Translate looks key up and substitutes $1..$9 with subs.
//
// A key missing from a loaded dictionary is logged and returned verbatim,
// without substitution.
func (t *Translator) Translate(key string, subs ...string) string {
	t.mu.RLock()
	dict := t.dict
	t.mu.RUnlock()

	template := key
	if dict != nil {
		translated, ok := dict[key]
		if !ok {
			t.logger.Warn("no translation for key", slog.String("key", key))
			return key
		}
		template = translated
	}
	return t.substitute(template, subs)
}

// Format applies $1..$9 substitution without a dictionary lookup.
func Format(template string, subs ...string) string {
	out, _ := format(template, subs)
	return out
}

func (t *Translator) substitute(template string, subs []string) string {
	out, missing := format(template, subs)
	for _, n := range missing {
		t.logger.Warn("translation argument out of range",
			slog.String("template", template),
			slog.Int("index", n),
			slog.Int("args", len(subs)),
		)
	}
	return out
}

// format replaces $n (1-9) by subs[n-1], rendering [n] for indexes with no
// argument. It reports the indexes that had no argument.
func format(template string, subs []string) (string, []int) {
	if !strings.Contains(template, "$") {
		return template, nil
	}

	var b strings.Builder
	var missing []int
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c == '$' && i+1 < len(template) && template[i+1] >= '1' && template[i+1] <= '9' {
			n := int(template[i+1] - '0')
			if n <= len(subs) {
				b.WriteString(subs[n-1])
			} else {
				b.WriteString("[" + strconv.Itoa(n) + "]")
				missing = append(missing, n)
			}
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String(), missing
}

// SetDictionary replaces the active dictionary wholesale, re-renders every
// registered element from its source text and then notifies subscribers in
// registration order. A nil dictionary restores identity translation.
func (t *Translator) SetDictionary(d Dictionary) {
	t.mu.Lock()
	t.dict = d
	elements := append([]*Element(nil), t.elements...)
	subscribers := append([]func(){}, t.subscribers...)
	t.mu.Unlock()

	for _, e := range elements {
		e.set(t.Translate(e.source))
	}
	for _, fn := range subscribers {
		fn()
	}
}

// Register records a translatable element and renders it immediately.
func (t *Translator) Register(source string, set func(string)) *Element {
	e := &Element{source: source, set: set}

	t.mu.Lock()
	t.elements = append(t.elements, e)
	t.mu.Unlock()

	set(t.Translate(source))
	return e
}

// Subscribe registers fn to run after every dictionary replacement.
func (t *Translator) Subscribe(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers = append(t.subscribers, fn)
}

// Loaded reports whether a dictionary is active
func (t *Translator) Loaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dict != nil
}
