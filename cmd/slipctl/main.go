// Command slipctl is the operator tool for the haul slip store: it initialises
// the schema and exports or lists stored slips without going through the API.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
