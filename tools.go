//go:build tools

package tools

// This file tracks versions of CLI tool dependencies.
// It is not compiled into the binary.
//
// goose is pinned via the go.mod tool directive and invoked as
// `go tool goose` for schema migrations.
