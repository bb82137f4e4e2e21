package catalog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frames(refs ...string) []Frame {
	out := make([]Frame, len(refs))
	for i, r := range refs {
		out[i] = Frame{Ref: r}
	}
	return out
}

func leaf(name string, refs ...string) *Node {
	return &Node{Name: name, Frames: frames(refs...)}
}

func container(name string, children ...*Node) *Node {
	return &Node{Name: name, Children: children}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		in         string
		wantName   string
		wantWeight int
		wantOK     bool
	}{
		{"Red(5)", "Red", 5, true},
		{"Red (40)", "Red", 40, true},
		{"Red", "Red", 0, false},
		{"Laser Eyes(0)", "Laser Eyes", 0, true},
		{"Odd(-3)", "Odd", -3, true},
		{"Huge(99999999999999999999)", "Huge", -1, true},
		{"Half(1)x", "Half(1)x", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, w, ok := ParseName(tt.in)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantWeight, w)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestNormalizeFrames(t *testing.T) {
	t.Run("loops short lists", func(t *testing.T) {
		got, err := NormalizeFrames(frames("f0", "f1", "f2"), 7)
		require.NoError(t, err)
		want := frames("f0", "f1", "f2", "f0", "f1", "f2", "f0")
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("NormalizeFrames mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("truncates long lists", func(t *testing.T) {
		got, err := NormalizeFrames(frames("a", "b", "c", "d"), 2)
		require.NoError(t, err)
		assert.Equal(t, frames("a", "b"), got)
	})

	t.Run("exact length", func(t *testing.T) {
		got, err := NormalizeFrames(frames("a", "b"), 2)
		require.NoError(t, err)
		assert.Equal(t, frames("a", "b"), got)
	})

	t.Run("no frames", func(t *testing.T) {
		_, err := NormalizeFrames(nil, 3)
		require.Error(t, err)
	})
}

func TestBuild_FlattensNestedContainers(t *testing.T) {
	c := New(2)
	res := c.Build([]*Node{
		container("bg", leaf("Red(3)", "red.png"), container("cool", leaf("Blue", "b1.png", "b2.png", "b3.png"))),
		container("body", leaf("Human(10)", "h.png")),
	})
	require.True(t, res.IsValid, "errors: %v", res.Errors)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 2, res.Stats.Categories)
	assert.Equal(t, 1, res.Stats.Containers)
	assert.Equal(t, 3, res.Stats.Options)
	assert.Equal(t, map[string]int{"bg": 2, "body": 1}, res.Stats.OptionsByCategory)

	opts, err := c.Options("bg")
	require.NoError(t, err)
	require.Len(t, opts, 2)

	assert.Equal(t, "bg", opts[0].Category)
	assert.Equal(t, "Red", opts[0].Name)
	assert.Equal(t, "Red(3)", opts[0].DisplayName)
	assert.Equal(t, 3, opts[0].Weight)
	assert.Equal(t, frames("red.png", "red.png"), opts[0].Frames)

	// Intermediate container names never leak into the option's category.
	assert.Equal(t, "bg", opts[1].Category)
	assert.Equal(t, "Blue", opts[1].Name)
	assert.Equal(t, 1, opts[1].Weight)
	assert.Equal(t, frames("b1.png", "b2.png"), opts[1].Frames)
	assert.Equal(t, "bg:Blue", opts[1].Key())
}

func TestBuild_NodeWeightFallback(t *testing.T) {
	c := New(1)
	res := c.Build([]*Node{
		container("bg", &Node{Name: "Green", Weight: 7, Frames: frames("g.png")}),
	})
	require.True(t, res.IsValid)
	o, err := c.Lookup("bg", "Green")
	require.NoError(t, err)
	assert.Equal(t, 7, o.Weight)
}

func TestBuild_ReportsInvalidNodes(t *testing.T) {
	mixed := &Node{Name: "mixed", Frames: frames("x.png"), Children: []*Node{leaf("Inner", "i.png")}}
	c := New(1)
	res := c.Build([]*Node{
		container("bg", leaf("Red", "r.png"), mixed, container("empty")),
		container("body", leaf("Robot(20000)", "r.png")),
		container("hat"),
	})

	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 4)
	assert.Equal(t, "bg/mixed", res.Errors[0].Path)
	assert.Contains(t, res.Errors[0].Reason, "both frames and sub-containers")
	assert.Equal(t, "bg/empty", res.Errors[1].Path)
	assert.Contains(t, res.Errors[1].Reason, "empty")
	assert.Equal(t, "body/Robot(20000)", res.Errors[2].Path)
	assert.Contains(t, res.Errors[2].Reason, "weight 20000")
	assert.Equal(t, "hat", res.Errors[3].Path)

	// Out-of-range weights do not stop the option from being counted.
	assert.Equal(t, 2, res.Stats.Options)

	var batch ValidationErrors = res.Errors
	assert.Contains(t, batch.Error(), "4 validation errors")
}

func TestOptions_BeforeSuccessfulBuild(t *testing.T) {
	c := New(1)
	_, err := c.Options("bg")
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, errors.Is(err, ErrNotBuilt))

	c.Build([]*Node{container("bg", container("empty"))})
	_, err = c.Options("bg")
	assert.True(t, errors.Is(err, ErrNotBuilt))
}

func TestOptions_UnknownCategory(t *testing.T) {
	c := New(1)
	require.True(t, c.Build([]*Node{container("bg", leaf("Red", "r.png"))}).IsValid)
	_, err := c.Options("nope")
	assert.True(t, errors.Is(err, ErrOptionNotFound))
}

func TestOptions_IsCached(t *testing.T) {
	c := New(1)
	require.True(t, c.Build([]*Node{container("bg", leaf("Red", "r.png"), leaf("Blue", "b.png"))}).IsValid)

	first, err := c.Options("bg")
	require.NoError(t, err)
	second, err := c.Options("bg")
	require.NoError(t, err)
	assert.Same(t, &first[0], &second[0])
}

func TestLookupAndFind(t *testing.T) {
	c := New(1)
	require.True(t, c.Build([]*Node{
		container("bg", leaf("Red(2)", "r.png")),
		container("body", leaf("Robot", "rb.png"), leaf("Red", "red-body.png")),
	}).IsValid)

	o, err := c.Lookup("bg", "Red(99)")
	require.NoError(t, err)
	assert.Equal(t, "bg:Red", o.Key())

	_, err = c.Lookup("bg", "Robot")
	assert.True(t, errors.Is(err, ErrOptionNotFound))

	o, err = c.Find([]string{"body", "bg"}, "Red")
	require.NoError(t, err)
	assert.Equal(t, "body", o.Category)

	_, err = c.Find([]string{"bg", "body"}, "Ghost")
	assert.True(t, errors.Is(err, ErrOptionNotFound))
}

func TestBuild_WarnsOnDimensionMismatch(t *testing.T) {
	c := New(1)
	res := c.Build([]*Node{
		container("bg",
			&Node{Name: "Red", Frames: []Frame{{Ref: "r.png", Width: 64, Height: 64}}},
			&Node{Name: "Blue", Frames: []Frame{{Ref: "b.png", Width: 64, Height: 64}}},
			&Node{Name: "Wide", Frames: []Frame{{Ref: "w.png", Width: 128, Height: 64}}},
		),
	})
	assert.True(t, res.IsValid)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "bg:Wide")
	assert.Contains(t, res.Warnings[0], "expected 64x64")
}

func TestBuild_DuplicateCategory(t *testing.T) {
	c := New(1)
	res := c.Build([]*Node{
		container("bg", leaf("Red", "r.png")),
		container("bg", leaf("Blue", "b.png")),
	})
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "duplicate category", res.Errors[0].Reason)
	assert.Equal(t, []string{"bg"}, c.Categories())
}
