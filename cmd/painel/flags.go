package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/spektr-org/painel/config"
	"github.com/spektr-org/painel/logger"
)

// commonFlags are accepted by every subcommand and feed config.Resolve.
type commonFlags struct {
	configPath string
	base       string
	snapshot   string
	logMode    string
	timeout    string
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet("painel "+name, flag.ExitOnError)
}

func bindCommon(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.configPath, "config", "", "Path to config file (default painel.yaml)")
	fs.StringVar(&c.base, "base", "", "Asset directory or base URL")
	fs.StringVar(&c.snapshot, "snapshot", "", "SQLite snapshot path")
	fs.StringVar(&c.logMode, "log", "", "Log mode: dev, prod, quiet")
	fs.StringVar(&c.timeout, "timeout", "", "HTTP timeout for remote assets")
	return c
}

func (c *commonFlags) resolve() (config.ResolvedConfig, error) {
	return config.Resolve(config.ResolveOptions{
		ConfigPath:  c.configPath,
		CLIBase:     c.base,
		CLILogMode:  c.logMode,
		CLISnapshot: c.snapshot,
		CLITimeout:  c.timeout,
	})
}

func newLogger(cfg config.ResolvedConfig) *logger.Logger {
	log, err := logger.New(cfg.LogMode.Value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️ logger unavailable (%v), continuing without logs\n", err)
		return logger.Nop()
	}
	return log
}

// listFlag collects a repeatable flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// splitList turns "a, b,,c" into [a b c].
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
