// Command tickmon queries the system tick of an nRF51 running the nrftick
// firmware over its serial link.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "tickmon:", err)
		os.Exit(1)
	}
}
