package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Weight bounds for a leaf option.
const (
	MinWeight = 1
	MaxWeight = 10000
)

// Frame is one ordered asset unit of an option.
type Frame struct {
	Ref    string `json:"ref"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Node is one entry of the nested category tree supplied by asset discovery.
// A node carries either Frames (a leaf option) or Children (a container),
// never both.
type Node struct {
	Name     string
	Weight   int // used when Name has no (weight) suffix; 0 means default
	Frames   []Frame
	Location string
	Children []*Node
}

// Option is one selectable trait value. Options are immutable once the
// catalog is built.
type Option struct {
	Category    string  `json:"category"`
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Weight      int     `json:"weight"`
	Frames      []Frame `json:"frames"`
	Location    string  `json:"location,omitempty"`
}

// Key returns the compound "category:name" identity of the option.
func (o Option) Key() string {
	return o.Category + ":" + o.Name
}

var weightSuffix = regexp.MustCompile(`^(.*?)\s*\((-?\d+)\)\s*$`)

// ParseName splits a display name of the form "Name(weight)". ok reports
// whether a suffix was present. A suffix that does not fit in an int is
// returned as weight -1 so range validation rejects it.
func ParseName(display string) (name string, weight int, ok bool) {
	m := weightSuffix.FindStringSubmatch(display)
	if m == nil {
		return strings.TrimSpace(display), 0, false
	}
	w, err := strconv.Atoi(m[2])
	if err != nil {
		w = -1
	}
	return strings.TrimSpace(m[1]), w, true
}

// BaseName strips any "(weight)" suffix from a display name.
func BaseName(display string) string {
	name, _, _ := ParseName(display)
	return name
}

// NormalizeFrames fits frames to exactly required entries: longer lists are
// truncated and shorter ones are looped cyclically.
func NormalizeFrames(frames []Frame, required int) ([]Frame, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("catalog: option has no frames")
	}
	if required < 1 {
		return nil, fmt.Errorf("catalog: required frame count must be positive, got %d", required)
	}
	out := make([]Frame, required)
	for i := range out {
		out[i] = frames[i%len(frames)]
	}
	return out, nil
}
