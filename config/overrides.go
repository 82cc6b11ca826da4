// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// EnvPrefix prefixes every environment variable that overrides a config value
const EnvPrefix = "WORKFLOWGEN_"

// ApplyEnv overrides config values from WORKFLOWGEN_* environment variables
//
// e.g. WORKFLOWGEN_AUTO_RELEASE=true sets auto-release
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	// empty values are treated as unset
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("NAME"); ok {
		c.Name = v
	}
	if v, ok := get("OUTPUT"); ok {
		c.Output = v
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{"AUTO_RELEASE", &c.AutoRelease},
		{"BENCHMARKS", &c.Benchmarks},
		{"AUTO_FIX", &c.AutoFix},
	}

	for _, f := range flags {
		v, ok := get(f.key)
		if !ok {
			continue
		}
		b, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, f.key, err)
		}
		*f.dst = b
	}

	return Validate(c)
}

// ApplyOverrides decodes key=value pairs (e.g. from --set) on top of c
//
// Keys use the config file names, values are weakly typed so "true" sets a bool.
func (c *Config) ApplyOverrides(overrides map[string]string) error {
	if len(overrides) == 0 {
		return nil
	}

	raw := make(map[string]any, len(overrides))
	for k, v := range overrides {
		if k == "schema-version" {
			return fmt.Errorf("%q cannot be overridden", k)
		}
		raw[k] = v
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           c,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid override: %w", err)
	}

	return Validate(c)
}
