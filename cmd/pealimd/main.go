// Package main is the entry point for the pealimd binary.
package main

import (
	"github.com/whysixthreeseven/pealim-local-dictionary/cmd"
)

func main() {
	cmd.Execute()
}
