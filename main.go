// Command lineage-graph traverses an edge-taxonomy-classified lineage
// graph across its derivation, containment, and association axes.
package main

import (
	"fmt"
	"os"

	"github.com/lineagehq/lineage-graph/cmd"
)

func main() {
	cli := cmd.NewCLI()

	if err := cli.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
