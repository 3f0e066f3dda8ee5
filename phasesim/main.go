// Package main provides the phasesim command.
package main

import "github.com/sarchlab/phasesim/phasesim/cmd"

func main() {
	cmd.Execute()
}
