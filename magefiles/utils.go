//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
)

type goOptions struct {
	env    []string
	stream bool
}

type goOption func(*goOptions)

// withEnv adds KEY=VALUE pairs on top of the current environment.
func withEnv(env ...string) goOption {
	return func(o *goOptions) {
		o.env = append(o.env, env...)
	}
}

func withStream() goOption {
	return func(o *goOptions) {
		o.stream = true
	}
}

// goTool runs one go subcommand in the module root. Output is kept and only
// printed on failure unless streaming or mage runs verbose.
func goTool(subcommand string, args []string, options ...goOption) (string, error) {
	opts := &goOptions{}
	for _, o := range options {
		o(opts)
	}

	argv := append([]string{subcommand}, args...)
	fmt.Printf("go %s\n", strings.Join(argv, " "))
	cmd := exec.Command(mg.GoCmd(), argv...)
	cmd.Env = append(os.Environ(), opts.env...)

	var out bytes.Buffer
	stream := opts.stream || mg.Verbose()
	if stream {
		cmd.Stdout = io.MultiWriter(&out, os.Stdout)
		cmd.Stderr = io.MultiWriter(&out, os.Stderr)
	} else {
		cmd.Stdout = &out
		cmd.Stderr = &out
	}
	if err := cmd.Run(); err != nil {
		if !stream {
			fmt.Print(out.String())
		}
		return "", fmt.Errorf("go %s: %w", subcommand, err)
	}
	return out.String(), nil
}

// goSteps runs go subcommands in order and stops at the first failure.
func goSteps(steps ...[]string) error {
	for _, step := range steps {
		if _, err := goTool(step[0], step[1:]); err != nil {
			return err
		}
	}
	return nil
}
