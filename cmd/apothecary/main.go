// Command apothecary records potions brewed from a base and two ingredients.
package main

import (
	"os"

	"github.com/roach88/apothecary/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
