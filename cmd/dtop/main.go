// Command dtop is a terminal dashboard monitoring Docker containers
// across one or more daemons simultaneously.
package main

import (
	"os"

	"github.com/siftail/dtop/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:]))
}
