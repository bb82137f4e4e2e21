package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Stats summarizes a built hierarchy.
type Stats struct {
	Categories        int            `json:"categories"`
	Containers        int            `json:"containers"`
	Options           int            `json:"options"`
	Frames            int            `json:"frames"`
	OptionsByCategory map[string]int `json:"optionsByCategory"`
}

// ValidationResult is the outcome of Build.
type ValidationResult struct {
	IsValid  bool             `json:"isValid"`
	Errors   ValidationErrors `json:"-"`
	Warnings []string         `json:"warnings"`
	Stats    Stats            `json:"stats"`
}

// ErrorMessages returns the error strings, for reports that serialize them.
func (r ValidationResult) ErrorMessages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Error()
	}
	return out
}

// entry is the validated internal form of a Node.
type entry struct {
	name     string
	option   *Option
	children []*entry
}

// Catalog holds the category hierarchy and resolves categories to their
// flattened leaf options. Lookups are cached per category; the cache is
// guarded so concurrent generation attempts may share one Catalog.
type Catalog struct {
	framesRequired int

	mu         sync.RWMutex
	built      bool
	categories []string
	roots      map[string]*entry
	result     ValidationResult
	cache      map[string][]Option
}

// New returns an empty Catalog that normalizes every option to
// framesRequired frames. Values below 1 are treated as 1.
func New(framesRequired int) *Catalog {
	if framesRequired < 1 {
		framesRequired = 1
	}
	return &Catalog{
		framesRequired: framesRequired,
		roots:          make(map[string]*entry),
		cache:          make(map[string][]Option),
	}
}

// Build walks the supplied category roots and replaces any previous
// hierarchy. Invalid nodes are skipped and reported; the catalog only
// serves lookups when the result has no errors.
func (c *Catalog) Build(roots []*Node) ValidationResult {
	b := &builder{
		framesRequired: c.framesRequired,
		stats:          Stats{OptionsByCategory: make(map[string]int)},
	}

	categories := make([]string, 0, len(roots))
	built := make(map[string]*entry, len(roots))
	for _, root := range roots {
		if root == nil {
			continue
		}
		name := strings.TrimSpace(root.Name)
		if _, dup := built[name]; dup {
			b.fail(name, "duplicate category")
			continue
		}
		e := b.category(name, root)
		if e == nil {
			continue
		}
		built[name] = e
		categories = append(categories, name)
	}
	b.stats.Categories = len(categories)
	b.checkDimensions()

	result := ValidationResult{
		IsValid:  len(b.errs) == 0,
		Errors:   b.errs,
		Warnings: b.warnings,
		Stats:    b.stats,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = categories
	c.roots = built
	c.cache = make(map[string][]Option)
	c.result = result
	c.built = result.IsValid
	return result
}

// Validation returns the result of the most recent Build.
func (c *Catalog) Validation() ValidationResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result
}

// Categories returns the category names in the order they were supplied.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Options returns every leaf option anywhere under category, tagged with
// category rather than the intermediate container name. The returned slice
// is shared with the cache and must not be modified.
func (c *Catalog) Options(category string) ([]Option, error) {
	c.mu.RLock()
	if !c.built {
		c.mu.RUnlock()
		return nil, &ValidationError{Path: category, Reason: "catalog has not been built successfully", Err: ErrNotBuilt}
	}
	if opts, ok := c.cache[category]; ok {
		c.mu.RUnlock()
		return opts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if opts, ok := c.cache[category]; ok {
		return opts, nil
	}
	root, ok := c.roots[category]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown category %q: %w", category, ErrOptionNotFound)
	}
	var opts []Option
	flatten(root, &opts)
	c.cache[category] = opts
	return opts, nil
}

// Lookup resolves name (with or without a weight suffix) inside category.
func (c *Catalog) Lookup(category, name string) (Option, error) {
	opts, err := c.Options(category)
	if err != nil {
		return Option{}, err
	}
	base := BaseName(name)
	for _, o := range opts {
		if o.Name == base {
			return o, nil
		}
	}
	return Option{}, fmt.Errorf("catalog: %s:%s: %w", category, base, ErrOptionNotFound)
}

// Find resolves a bare name by searching categories in the given order.
func (c *Catalog) Find(order []string, name string) (Option, error) {
	base := BaseName(name)
	for _, cat := range order {
		opts, err := c.Options(cat)
		if err != nil {
			return Option{}, err
		}
		for _, o := range opts {
			if o.Name == base {
				return o, nil
			}
		}
	}
	return Option{}, fmt.Errorf("catalog: %s: %w", base, ErrOptionNotFound)
}

func flatten(e *entry, out *[]Option) {
	if e.option != nil {
		*out = append(*out, *e.option)
		return
	}
	for _, child := range e.children {
		flatten(child, out)
	}
}

// builder accumulates errors and warnings during one Build.
type builder struct {
	framesRequired int
	errs           ValidationErrors
	warnings       []string
	stats          Stats
	leaves         []*Option
}

func (b *builder) fail(path, reason string) {
	b.errs = append(b.errs, &ValidationError{Path: path, Reason: reason})
}

func (b *builder) warn(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

func (b *builder) category(name string, root *Node) *entry {
	switch {
	case name == "":
		b.fail("<root>", "category has no name")
		return nil
	case len(root.Children) == 0:
		b.fail(name, "category has no options")
		return nil
	case len(root.Frames) > 0:
		b.fail(name, "category holds frames alongside options")
		return nil
	}
	e := &entry{name: name}
	seen := make(map[string]string)
	for _, child := range root.Children {
		if ce := b.node(name, name, child, seen); ce != nil {
			e.children = append(e.children, ce)
		}
	}
	return e
}

// node validates one non-root node. seen maps option names already placed
// in the category to their paths.
func (b *builder) node(category, parent string, n *Node, seen map[string]string) *entry {
	if n == nil {
		return nil
	}
	path := parent + "/" + n.Name
	switch {
	case len(n.Frames) > 0 && len(n.Children) > 0:
		b.fail(path, "node holds both frames and sub-containers")
		return nil
	case len(n.Frames) == 0 && len(n.Children) == 0:
		b.fail(path, "node is empty")
		return nil
	case len(n.Children) > 0:
		b.stats.Containers++
		e := &entry{name: n.Name}
		for _, child := range n.Children {
			if ce := b.node(category, path, child, seen); ce != nil {
				e.children = append(e.children, ce)
			}
		}
		return e
	}

	name, weight, hasWeight := ParseName(n.Name)
	if !hasWeight {
		weight = n.Weight
		if weight == 0 {
			weight = MinWeight
		}
	}
	if weight < MinWeight || weight > MaxWeight {
		b.fail(path, fmt.Sprintf("weight %d outside [%d,%d]", weight, MinWeight, MaxWeight))
	}
	frames, err := NormalizeFrames(n.Frames, b.framesRequired)
	if err != nil {
		b.fail(path, err.Error())
		return nil
	}
	if prev, dup := seen[name]; dup {
		b.warn("%s: option name %q already used at %s", path, name, prev)
	}
	seen[name] = path

	opt := &Option{
		Category:    category,
		Name:        name,
		DisplayName: n.Name,
		Weight:      weight,
		Frames:      frames,
		Location:    n.Location,
	}
	b.leaves = append(b.leaves, opt)
	b.stats.Options++
	b.stats.Frames += len(n.Frames)
	b.stats.OptionsByCategory[category]++
	return &entry{name: n.Name, option: opt}
}

// checkDimensions warns about frames whose size differs from the most
// common frame size in the catalog. Frames with unknown size are ignored.
func (b *builder) checkDimensions() {
	counts := make(map[[2]int]int)
	for _, leaf := range b.leaves {
		for _, f := range leaf.Frames {
			if f.Width > 0 && f.Height > 0 {
				counts[[2]int{f.Width, f.Height}]++
			}
		}
	}
	if len(counts) < 2 {
		return
	}
	sizes := make([][2]int, 0, len(counts))
	for s := range counts {
		sizes = append(sizes, s)
	}
	sort.Slice(sizes, func(i, j int) bool {
		if counts[sizes[i]] != counts[sizes[j]] {
			return counts[sizes[i]] > counts[sizes[j]]
		}
		if sizes[i][0] != sizes[j][0] {
			return sizes[i][0] < sizes[j][0]
		}
		return sizes[i][1] < sizes[j][1]
	})
	want := sizes[0]
	for _, leaf := range b.leaves {
		for _, f := range leaf.Frames {
			if f.Width == 0 || f.Height == 0 || (f.Width == want[0] && f.Height == want[1]) {
				continue
			}
			b.warn("%s: frame %s is %dx%d, expected %dx%d", leaf.Key(), f.Ref, f.Width, f.Height, want[0], want[1])
			break
		}
	}
}
