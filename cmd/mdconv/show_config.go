package main

import (
	"fmt"

	"github.com/alnah/go-mdconv/internal/yamlutil"
)

// runConfig prints the effective configuration as YAML.
func runConfig(args []string, env *Environment) error {
	fs := newFlagSet("config", env.Stdout, printConfigUsage)
	if _, err := parseWith(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: config takes at most one name, got %d", ErrUsage, fs.NArg())
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadEffectiveConfig(fs.Arg(0), envCfg)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out, err := yamlutil.Encode(cfg)
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(out)
	return err
}
