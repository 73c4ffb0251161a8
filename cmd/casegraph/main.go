// casegraph is the intelligence and geospatial correlation engine binary.
package main

import (
	"os"

	"github.com/openintel/casegraph/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
