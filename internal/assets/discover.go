// Package assets turns an on-disk layer tree into catalog nodes.
package assets

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dusk-indust/traitgen/internal/catalog"
)

// frameExts lists the file extensions treated as frames.
var frameExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// Discover reads one top-level directory per category under dir, in the
// given order. Nested directories become containers and image files become
// frames, sorted by file name with digit runs compared as numbers. Shape errors (a directory with both files and
// subdirectories, an empty directory) are left for the catalog to report.
func Discover(dir string, order []string) ([]*catalog.Node, error) {
	roots := make([]*catalog.Node, 0, len(order))
	for _, category := range order {
		path := filepath.Join(dir, category)
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("assets: category %q: %w", category, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("assets: category %q: %s is not a directory", category, path)
		}
		root, err := readNode(path, category)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return roots, nil
}

func readNode(path, name string) (*catalog.Node, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("assets: read %s: %w", path, err)
	}

	node := &catalog.Node{Name: name, Location: path}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		child := filepath.Join(path, e.Name())
		if e.IsDir() {
			n, err := readNode(child, e.Name())
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, n)
			continue
		}
		if !frameExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		node.Frames = append(node.Frames, readFrame(child))
	}
	sort.SliceStable(node.Frames, func(i, j int) bool {
		return naturalLess(filepath.Base(node.Frames[i].Ref), filepath.Base(node.Frames[j].Ref))
	})
	return node, nil
}

// naturalLess orders names so that "2.png" sorts before "10.png". Digit runs
// compare by value; equal values with more leading zeros sort first.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		if isDigit(a[0]) && isDigit(b[0]) {
			da, db := digitRun(a), digitRun(b)
			na, nb := strings.TrimLeft(da, "0"), strings.TrimLeft(db, "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			if len(da) != len(db) {
				return len(da) > len(db)
			}
			a, b = a[len(da):], b[len(db):]
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func digitRun(s string) string {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i]
}

// readFrame records the image size when it can be decoded. Unreadable
// images keep zero dimensions.
func readFrame(path string) catalog.Frame {
	f := catalog.Frame{Ref: path}
	file, err := os.Open(path)
	if err != nil {
		return f
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return f
	}
	f.Width, f.Height = cfg.Width, cfg.Height
	return f
}
