// Command relay-control drives timed relay actuations on a Raspberry Pi,
// triggered over HTTP or by a physical button.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
