// Package main is the groupbuy binary: the HTTP API plus maintenance
// subcommands for schema migration and retention sweeps.
//
// @title          Groupbuy API
// @version        1.0
// @description    Group food-order proposals and their orders.
// @BasePath       /api
package main

import (
	"fmt"
	"os"
)

// Set via -ldflags "-X main.version=... -X main.commit=...".
var (
	version string
	commit  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
