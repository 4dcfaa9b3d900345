// SPDX-License-Identifier: BSD-2-Clause
// Command hyply is a thin CLI wrapper over the hyply library: detect a
// single file's language, or break down a directory tree by language
// (§6 CLI surface). The real work lives in the root package and its
// internal/* packages; this binary only parses flags and renders output.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"
