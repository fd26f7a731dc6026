//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

const shaderDir = "shaders"

type Build mg.Namespace

// Compiles every GLSL source under shaders/ to SPIR-V next to it.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the vkcore binary into bin/.
func (Build) Binary() error {
	if err := os.MkdirAll("bin", 0o755); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-o", filepath.Join("bin", "vkcore"), "."), withStream())
	return err
}

func buildShaders() error {
	var sources []string
	for _, ext := range []string{"*.vert", "*.frag", "*.comp"} {
		matches, err := filepath.Glob(filepath.Join(shaderDir, ext))
		if err != nil {
			return err
		}
		sources = append(sources, matches...)
	}
	if len(sources) == 0 {
		fmt.Println("no shader sources found")
		return nil
	}
	for _, src := range sources {
		name := filepath.Base(src)
		if _, err := executeCmd("glslc", withArgs(name, "-o", name+".spv"), withDir(shaderDir), withStream()); err != nil {
			return err
		}
	}
	return nil
}
