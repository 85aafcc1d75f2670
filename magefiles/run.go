//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed. CONFIG and FRAMES are passed on when set.
func (Run) Testbed() error {
	args := []string{"main.go"}
	if config := os.Getenv("CONFIG"); config != "" {
		args = append(args, "-config", config)
	}
	if frames := os.Getenv("FRAMES"); frames != "" {
		args = append(args, "-frames", frames)
	}
	fmt.Println("Run testbed...")
	_, err := goTool("run", args, withStream())
	return err
}
