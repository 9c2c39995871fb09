package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the on-disk server configuration, grounded on the
// teacher's internal/server/config.go ServerConfig/ServerSettings/
// TableConfig HCL blocks, adapted from bot-table presets to the
// room/game defaults a freshly created room falls back to when a
// CreateGame request doesn't specify its own blinds and buy-in.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Table  TableDefaults  `hcl:"table,block"`
}

// ServerSettings is the process-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	DataDir  string `hcl:"data_dir,optional"`
}

// TableDefaults seeds a room's default blinds and stack when a
// CreateGame command omits them.
type TableDefaults struct {
	SmallBlind    int `hcl:"small_blind,optional"`
	BigBlind      int `hcl:"big_blind,optional"`
	StartingChips int `hcl:"starting_chips,optional"`
}

// DefaultConfig is used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
			DataDir:  "",
		},
		Table: TableDefaults{
			SmallBlind:    5,
			BigBlind:      10,
			StartingChips: 1000,
		},
	}
}

// LoadConfig reads an HCL config file, falling back to DefaultConfig
// when filename doesn't exist (mirrors LoadServerConfig's
// missing-file behavior).
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse HCL file: %s", diags.Error())
	}

	config := DefaultConfig()
	diags = gohcl.DecodeBody(file.Body, nil, config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode HCL: %s", diags.Error())
	}

	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Table.SmallBlind == 0 {
		config.Table.SmallBlind = 5
	}
	if config.Table.BigBlind == 0 {
		config.Table.BigBlind = 2 * config.Table.SmallBlind
	}
	if config.Table.StartingChips == 0 {
		config.Table.StartingChips = 100 * config.Table.BigBlind
	}

	return config, nil
}

// Validate checks the loaded configuration for obviously broken values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Table.SmallBlind <= 0 {
		return fmt.Errorf("table: small blind must be positive")
	}
	if c.Table.BigBlind <= c.Table.SmallBlind {
		return fmt.Errorf("table: big blind must be greater than small blind")
	}
	if c.Table.StartingChips <= 0 {
		return fmt.Errorf("table: starting chips must be positive")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
