package main

import (
	"errors"

	flag "github.com/spf13/pflag"
)

// runConfigCmd prints the effective configuration as YAML, after the file,
// the environment and validation have been applied.
func runConfigCmd(args []string, env *Environment) error {
	f, _, err := parseConfigFlags("config", args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return usageError(err)
	}

	cfg, err := loadConfig(f, env)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(out)
	return err
}
