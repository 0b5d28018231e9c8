// Package main provides the entry point for the dashboard.
package main

import (
	"github.com/netrics-lab/netrics-dashboard/internal/cli"
)

func main() {
	cli.Execute()
}
