// Package cliconfig is the thin CLI-invocation layer over internal/project:
// where to find the project root, how to render output, and at what log
// level — kept separate from internal/cli/commands to avoid an import
// cycle between the root command and its subcommands (grounded on the
// teacher's internal/cli/config package serving the same role via a
// package-level "current config" the commands package reads back, instead
// of threading it through context across package boundaries).
package cliconfig

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/foundrydata/foundry/internal/project"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config is one command invocation's resolved settings.
type Config struct {
	ProjectDir string `koanf:"project_dir"`
	Output     string `koanf:"output"`
	Verbose    bool   `koanf:"verbose"`
}

var current *Config

// Load layers defaults, FOUNDRY_-prefixed env vars, and changed flags
// (highest precedence) into a Config, resolves ProjectDir against
// project.FindProjectRoot, and stashes the result for GetCurrent.
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	cwd, _ := os.Getwd()
	if err := k.Load(confmap.Provider(map[string]any{
		"project_dir": cwd,
		"output":      "auto",
		"verbose":     false,
	}, "."), nil); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("FOUNDRY_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "FOUNDRY_"))
	}), nil); err != nil {
		return nil, err
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if key == "project" {
				key = "project_dir"
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if abs, err := filepath.Abs(cfg.ProjectDir); err == nil {
		cfg.ProjectDir = abs
	}
	if root := project.FindProjectRoot(cfg.ProjectDir); root != "" {
		cfg.ProjectDir = root
	}

	current = &cfg
	return &cfg, nil
}

// GetCurrent returns the most recently Load-ed Config, or a cwd-rooted
// default if Load hasn't run yet (e.g. a command invoked directly in tests).
func GetCurrent() *Config {
	if current != nil {
		return current
	}
	cwd, _ := os.Getwd()
	return &Config{ProjectDir: cwd, Output: "auto"}
}

// Reset clears the package-level config. Used by tests.
func Reset() { current = nil }

type loggerKey struct{}

// WithLogger stashes logger in ctx for GetLogger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger stashed in ctx, or a discard logger.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
