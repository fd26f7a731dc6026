//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and runs the clear-screen testbed.
func (Run) Testbed() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Run testbed...")
	_, err := executeCmd("go", withArgs("run", ".", "run"), withStream())
	return err
}

// Prints the device negotiation report.
func (Run) Probe() error {
	_, err := executeCmd("go", withArgs("run", ".", "probe"), withStream())
	return err
}
