// Package main is the single-binary entrypoint for Mentor.
package main

import "github.com/mentor-ia/mentor/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
