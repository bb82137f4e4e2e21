package rules

import (
	"strings"

	"github.com/dusk-indust/traitgen/internal/catalog"
)

// Key identifies an option in a rule table, either as "Category:Name" or
// as a bare "Name" that matches the name in any category. Names are stored
// without their "(weight)" suffix.
type Key struct {
	Category string
	Name     string
}

// ParseKey parses a rule-table string. The text before the first colon is
// the category; an empty category part yields a bare key.
func ParseKey(s string) Key {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return Key{
			Category: strings.TrimSpace(s[:i]),
			Name:     catalog.BaseName(strings.TrimSpace(s[i+1:])),
		}
	}
	return Key{Name: catalog.BaseName(s)}
}

// Bare reports whether the key has no category.
func (k Key) Bare() bool {
	return k.Category == ""
}

func (k Key) String() string {
	if k.Bare() {
		return k.Name
	}
	return k.Category + ":" + k.Name
}

// Matches reports whether o is the option k refers to.
func (k Key) Matches(o catalog.Option) bool {
	if k.Name != o.Name {
		return false
	}
	return k.Bare() || k.Category == o.Category
}

func matchesAny(keys []Key, o catalog.Option) bool {
	for _, k := range keys {
		if k.Matches(o) {
			return true
		}
	}
	return false
}
