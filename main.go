// The main package for the styleguide executable.
package main

import (
	"github.com/JakeFAU/style-guide-generator/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
