//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Vets and builds every package.
func (Build) Engine() error {
	return goSteps(
		[]string{"vet", "./..."},
		[]string{"build", "./..."},
	)
}

// Runs the test suite with the race detector.
func (Build) Test() error {
	_, err := goTool("test", []string{"-race", "./..."}, withEnv("CGO_ENABLED=1"), withStream())
	return err
}

// Tidies the module and regenerates sources.
func (Build) Tidy() error {
	return goSteps(
		[]string{"mod", "tidy"},
		[]string{"generate", "./..."},
	)
}
