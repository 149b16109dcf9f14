// Package config loads millflow settings from defaults, an optional YAML
// file, a .env file and MILLFLOW_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"millflow/internal/models"
	"millflow/internal/rules"
	"millflow/internal/validation"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Company  CompanyConfig  `yaml:"company"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Rules    RulesConfig    `yaml:"rules"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	DBPath string `yaml:"db_path"`
	Dev    bool   `yaml:"dev"`
	// RateLimit is the number of API requests allowed per client per
	// minute. Zero disables limiting.
	RateLimit int `yaml:"rate_limit"`
}

type CompanyConfig struct {
	Name string `yaml:"name"`
}

type WorkflowConfig struct {
	// HighPriorityDays and MediumPriorityDays are the days-to-delivery
	// thresholds for priority derivation.
	HighPriorityDays   int `yaml:"high_priority_days"`
	MediumPriorityDays int `yaml:"medium_priority_days"`
	// LeadTimeDays is the per-priority lead time used when a sales order has
	// no delivery date. Only the Medium entry is read unless
	// HonorPriorityLeadTime is set.
	LeadTimeDays          map[string]int `yaml:"lead_time_days"`
	HonorPriorityLeadTime bool           `yaml:"honor_priority_lead_time"`
	MaxPhotoBytes         int            `yaml:"max_photo_bytes"`
}

type RulesConfig struct {
	Materials  rules.Table[string]   `yaml:"materials"`
	Operations rules.Table[[]string] `yaml:"operations"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: 9000, DBPath: "millflow.db", RateLimit: 600},
		Company: CompanyConfig{Name: "Your Company"},
		Workflow: WorkflowConfig{
			HighPriorityDays:   7,
			MediumPriorityDays: 14,
			LeadTimeDays: map[string]int{
				models.PriorityHigh:   7,
				models.PriorityMedium: 14,
				models.PriorityLow:    21,
			},
			MaxPhotoBytes: validation.MaxPhotoBytes,
		},
		Rules: RulesConfig{
			Materials:  rules.DefaultMaterials(),
			Operations: rules.DefaultOperations(),
		},
	}
}

// Load builds the configuration. path may be empty; a missing .env file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("MILLFLOW_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MILLFLOW_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("MILLFLOW_DB"); v != "" {
		c.Server.DBPath = v
	}
	if v := os.Getenv("MILLFLOW_DEV"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MILLFLOW_DEV: %w", err)
		}
		c.Server.Dev = dev
	}
	if v := os.Getenv("MILLFLOW_COMPANY_NAME"); v != "" {
		c.Company.Name = v
	}
	return nil
}

// Validate checks the settings that would otherwise fail at request time.
func (c *Config) Validate() error {
	ve := &validation.ValidationErrors{}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		ve.Add("server.port", "must be between 1 and 65535")
	}
	validation.RequireField(ve, "server.db_path", c.Server.DBPath)
	if c.Workflow.HighPriorityDays > c.Workflow.MediumPriorityDays {
		ve.Add("workflow.high_priority_days", "must not exceed medium_priority_days")
	}
	if _, ok := c.Workflow.LeadTimeDays[models.PriorityMedium]; !ok {
		ve.Add("workflow.lead_time_days", "must define Medium")
	}
	if c.Workflow.MaxPhotoBytes <= 0 {
		ve.Add("workflow.max_photo_bytes", "must be positive")
	}
	if len(c.Rules.Operations.Fallback) == 0 {
		ve.Add("rules.operations.fallback", "must list at least one operation")
	}
	return ve.Err()
}
