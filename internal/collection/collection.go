// Package collection holds the generated-item model shared by the
// orchestrator, the rarity scorer and the exporters.
package collection

import (
	"sort"
	"strings"
	"time"

	"github.com/dusk-indust/traitgen/internal/catalog"
)

// OptionRarity is the rarity of one option within a combination.
type OptionRarity struct {
	Key    string  `json:"key"`
	Rarity float64 `json:"rarity"`
}

// Rarity is the score of a combination. Rank and Percentile stay zero until
// the final ranking pass has run over the whole collection.
type Rarity struct {
	Overall    float64        `json:"overall"`
	PerOption  []OptionRarity `json:"perOption"`
	Rank       int            `json:"rank"`
	Percentile float64        `json:"percentile"`
}

// Combination is one generated item: one option per category in processing
// order.
type Combination struct {
	ID        int              `json:"id"`
	Options   []catalog.Option `json:"options"`
	Rarity    Rarity           `json:"rarity"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Signature returns the canonical uniqueness key of the combination.
func (c *Combination) Signature() string {
	return Signature(c.Options)
}

// Signature sorts the "category:name" keys of options and joins them. Two
// option lists with the same signature are the same item.
func Signature(options []catalog.Option) string {
	keys := make([]string, len(options))
	for i, o := range options {
		keys[i] = o.Key()
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}
