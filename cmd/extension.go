package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Environment of an extension, so that it opens the same portfolio on the same day.
const (
	EnvConfig = "PORTFOLIO_CONFIG"
	EnvDB     = "PORTFOLIO_DB"
	EnvAsOf   = "PORTFOLIO_ASOF"
)

// extensionEnv resolves the global flags into the environment of an extension.
//
// Relative dates are resolved, and the database is the one the configuration points to.
func extensionEnv() []string {
	env := append(os.Environ(), EnvConfig+"="+*configPath)
	if cfg, err := loadConfig(); err == nil {
		env = append(env, EnvDB+"="+cfg.DB)
	}
	if on, err := asOf(); err == nil {
		env = append(env, EnvAsOf+"="+on.String())
	}
	return env
}

// RunExtension runs the pcs-<name> executable found in PATH with args.
//
// It reports whether such an executable exists, and its exit code.
func RunExtension(ctx context.Context, name string, args []string) (bool, int) {
	bin, err := exec.LookPath("pcs-" + name)
	if err != nil {
		return false, 0
	}

	ext := exec.CommandContext(ctx, bin, args...)
	ext.Stdin, ext.Stdout, ext.Stderr = os.Stdin, stdout, os.Stderr
	ext.Env = extensionEnv()

	err = ext.Run()
	var exit *exec.ExitError
	switch {
	case err == nil:
		return true, 0
	case errors.As(err, &exit):
		return true, exit.ExitCode()
	default:
		fmt.Fprintf(os.Stderr, "Error: cannot run %s: %v\n", bin, err)
		return true, 1
	}
}
