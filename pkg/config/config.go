// Package config loads mapper settings from YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noders-team/go-jsonmapper/pkg/mapper"
)

// Config mirrors the mapper options. Unset switches keep the mapper defaults.
type Config struct {
	ExceptionWhenUndefinedProperty *bool             `yaml:"exceptionWhenUndefinedProperty"`
	ExceptionWhenMissingData       *bool             `yaml:"exceptionWhenMissingData"`
	EnforceMapType                 *bool             `yaml:"enforceMapType"`
	StrictObjectTypeChecking       *bool             `yaml:"strictObjectTypeChecking"`
	ExceptionWhenNullType          *bool             `yaml:"exceptionWhenNullType"`
	IgnoreVisibility               *bool             `yaml:"ignoreVisibility"`
	OverrideClassMap               map[string]string `yaml:"overrideClassMap"`
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML data. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	return Load(bytes.NewReader(data))
}

func Load(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return &cfg, nil
}

// Options converts the configuration into mapper options.
func (c *Config) Options() []mapper.Option {
	var opts []mapper.Option
	add := func(v *bool, fn func(bool) mapper.Option) {
		if v != nil {
			opts = append(opts, fn(*v))
		}
	}
	add(c.ExceptionWhenUndefinedProperty, mapper.WithExceptionWhenUndefinedProperty)
	add(c.ExceptionWhenMissingData, mapper.WithExceptionWhenMissingData)
	add(c.EnforceMapType, mapper.WithEnforceMapType)
	add(c.StrictObjectTypeChecking, mapper.WithStrictObjectTypeChecking)
	add(c.ExceptionWhenNullType, mapper.WithExceptionWhenNullType)
	add(c.IgnoreVisibility, mapper.WithIgnoreVisibility)
	if len(c.OverrideClassMap) > 0 {
		opts = append(opts, mapper.WithOverrideClassMap(c.OverrideClassMap))
	}
	return opts
}

// NewMapper builds a mapper from the configuration; extra options apply last.
func (c *Config) NewMapper(extra ...mapper.Option) *mapper.Mapper {
	return mapper.New(append(c.Options(), extra...)...)
}
