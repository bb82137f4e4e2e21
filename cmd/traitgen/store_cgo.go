//go:build cgo

package main

import (
	"fmt"
	"os"

	"github.com/dusk-indust/traitgen/internal/graph"
	"github.com/dusk-indust/traitgen/internal/mcptools"
)

// storeFactory returns a factory for rule graph stores. An empty path keeps
// the graph in memory; ":memory:" uses an in-memory KuzuDB; anything else is
// a KuzuDB file that is recreated on every open.
func storeFactory(path string) mcptools.StoreFactory {
	switch path {
	case "":
		return mcptools.MemStoreFactory
	case ":memory:":
		return func() (graph.Store, error) {
			return graph.NewKuzuStore()
		}
	}
	return func() (graph.Store, error) {
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("reset %s: %w", path, err)
		}
		return graph.NewKuzuFileStore(path)
	}
}
