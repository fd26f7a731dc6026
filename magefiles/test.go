//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every test, including the ones that need a Vulkan driver. Results are
// never taken from the test cache.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withEnv("GOFLAGS=-count=1"), withStream())
	return err
}

// Runs the tests that do not need a GPU.
func (Test) Short() error {
	_, err := executeCmd("go", withArgs("test", "-short", "./..."), withStream())
	return err
}
