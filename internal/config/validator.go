package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/livp123/wowclp/pkg/combatlog"
)

// ValidationError represents a single validation error.
// ValidationError 表示单个验证错误。
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

// ValidationWarning represents a potential issue that's not critical.
// ValidationWarning 表示非关键的潜在问题。
type ValidationWarning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

// ValidationResult contains all validation errors and warnings.
// ValidationResult 包含所有验证错误和警告。
type ValidationResult struct {
	Valid    bool                `json:"valid"`
	Errors   []ValidationError   `json:"errors"`
	Warnings []ValidationWarning `json:"warnings"`
}

// AddError adds a validation error.
// AddError 添加验证错误。
func (r *ValidationResult) AddError(field, message string, value any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Value: value})
	r.Valid = false
}

// AddWarning adds a validation warning.
// AddWarning 添加验证警告。
func (r *ValidationResult) AddWarning(field, message string, value any) {
	r.Warnings = append(r.Warnings, ValidationWarning{Field: field, Message: message, Value: value})
}

// Err folds the errors into one error, or nil when the config is valid.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

const maxWorkers = 256

// Validate checks every section and returns all findings.
// Validate 检查每个部分并返回所有结果。
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true, Errors: []ValidationError{}, Warnings: []ValidationWarning{}}

	c.validateLogging(result)
	c.validateParser(result)
	c.validateOutput(result)
	c.validateTail(result)
	c.validateMetrics(result)

	return result
}

func (c *Config) validateLogging(result *ValidationResult) {
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		result.AddWarning("logging.level", "unknown level, info is used", c.Logging.Level)
	}
	if c.Logging.Enabled && c.Logging.Path == "" {
		result.AddError("logging.path", "path is required when file logging is enabled", c.Logging.Path)
	}
}

func (c *Config) validateParser(result *ValidationResult) {
	p := c.Parser
	if p.Workers < 1 || p.Workers > maxWorkers {
		result.AddError("parser.workers", fmt.Sprintf("must be between 1 and %d", maxWorkers), p.Workers)
	}
	if p.BatchSize < 1 {
		result.AddError("parser.batch_size", "must be positive", p.BatchSize)
	} else if p.BatchSize > 1<<16 {
		result.AddWarning("parser.batch_size", "very large batches delay ordered output", p.BatchSize)
	}
	if p.Year < 0 || (p.Year > 0 && p.Year < combatlog.EpochYear) {
		result.AddError("parser.year", "must be 0 or a four-digit year", p.Year)
	}
	if p.Timezone != "" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			result.AddError("parser.timezone", err.Error(), p.Timezone)
		}
	}
	for field, policy := range p.NilDefaults {
		if _, err := combatlog.ParseNilPolicy(policy); err != nil {
			result.AddError("parser.nil_defaults."+field, err.Error(), policy)
		}
	}
}

func (c *Config) validateOutput(result *ValidationResult) {
	switch c.Output.Format {
	case "json", "text":
	default:
		result.AddError("output.format", "must be json or text", c.Output.Format)
	}
}

func (c *Config) validateTail(result *ValidationResult) {
	switch c.Tail.Position {
	case "start", "end", "checkpoint":
	default:
		result.AddError("tail.position", "must be start, end or checkpoint", c.Tail.Position)
	}
	if c.Tail.Position == "checkpoint" && c.Tail.CheckpointFile == "" {
		result.AddError("tail.checkpoint_file", "required when position is checkpoint", c.Tail.CheckpointFile)
	}
}

func (c *Config) validateMetrics(result *ValidationResult) {
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		result.AddError("metrics.addr", "address is required when metrics are enabled", c.Metrics.Addr)
	}
}

// Location resolves the parser timezone, falling back to time.Local.
func (p ParserConfig) Location() *time.Location {
	if p.Timezone == "" || p.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
