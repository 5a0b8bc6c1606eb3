package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/gogpu/framegraph/backend"
)

// defaultConfigFile is read when present; -config makes it mandatory.
const defaultConfigFile = "fgdump.toml"

// Config is the fgdump configuration file. Flags given on the command line
// override it.
//
//	backend       = "noop"
//	execute       = true
//	out           = "report.txt"
//	log_level     = "debug"
//	strict_cycles = true
//
//	[vars]
//	width  = 1920
//	height = 1080
type Config struct {
	Backend      string         `toml:"backend"`
	Execute      bool           `toml:"execute"`
	Watch        bool           `toml:"watch"`
	Out          string         `toml:"out"`
	LogLevel     string         `toml:"log_level"`
	StrictCycles bool           `toml:"strict_cycles"`
	Vars         map[string]any `toml:"vars"`
}

func defaultConfig() Config {
	return Config{
		Backend:  backend.BackendNull,
		LogLevel: "warn",
	}
}

// loadConfig reads path over the defaults. A missing file is an error only
// when required is set.
func loadConfig(path string, required bool) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// level parses LogLevel with slog's names: debug, info, warn, error.
func (c Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

// ctyVars converts the [vars] table to graph file variables.
func (c Config) ctyVars() (map[string]cty.Value, error) {
	names := make([]string, 0, len(c.Vars))
	for name := range c.Vars {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]cty.Value, len(c.Vars))
	for _, name := range names {
		v := c.Vars[name]
		ty, err := gocty.ImpliedType(v)
		if err != nil {
			return nil, fmt.Errorf("config var %q: %w", name, err)
		}
		val, err := gocty.ToCtyValue(v, ty)
		if err != nil {
			return nil, fmt.Errorf("config var %q: %w", name, err)
		}
		out[name] = val
	}
	return out, nil
}
