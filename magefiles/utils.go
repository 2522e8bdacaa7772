//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type cmdOptions struct {
	args   []string
	env    map[string]string
	stream bool
}

type cmdOption func(*cmdOptions)

func withArgs(args ...string) cmdOption {
	return func(o *cmdOptions) {
		o.args = args
	}
}

// withEnv adds a variable to the environment of the command.
func withEnv(key, value string) cmdOption {
	return func(o *cmdOptions) {
		if o.env == nil {
			o.env = make(map[string]string)
		}
		o.env[key] = value
	}
}

func withStream() cmdOption {
	return func(o *cmdOptions) {
		o.stream = true
	}
}

// executeCmd runs command and returns its combined output. Output is echoed
// when streaming or when mage runs with -v, and printed on failure otherwise.
func executeCmd(command string, options ...cmdOption) (string, error) {
	opts := &cmdOptions{}
	for _, o := range options {
		o(opts)
	}

	var b bytes.Buffer
	echo := mg.Verbose() || opts.stream
	if _, err := sh.Exec(opts.env, teeIf(echo, &b, os.Stdout), teeIf(echo, &b, os.Stderr), command, opts.args...); err != nil {
		if !echo {
			fmt.Printf("... %s failed:\n%s\n", command, b.String())
		}
		return "", fmt.Errorf("error executing %s: %w", command, err)
	}
	return b.String(), nil
}

func teeIf(echo bool, buf *bytes.Buffer, out io.Writer) io.Writer {
	if echo {
		return io.MultiWriter(buf, out)
	}
	return buf
}

// Tidy runs go mod tidy and go generate.
func Tidy() error {
	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return fmt.Errorf("failed to run go mod tidy: %w", err)
	}
	if err := sh.RunV("go", "generate", "./..."); err != nil {
		return fmt.Errorf("failed to run go generate: %w", err)
	}
	return nil
}
