//go:build !cgo

package main

import (
	"errors"

	"github.com/dusk-indust/traitgen/internal/graph"
	"github.com/dusk-indust/traitgen/internal/mcptools"
)

func storeFactory(path string) mcptools.StoreFactory {
	if path == "" {
		return mcptools.MemStoreFactory
	}
	return func() (graph.Store, error) {
		return nil, errors.New("--kuzu requires a cgo build")
	}
}
