// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cliflags

import (
	"fmt"
	"os"
)

// FlagInfo describes a command-line flag.
type FlagInfo struct {
	// Name of the flag as used on the command line.
	Name string
	// Shorthand is the one-letter alias, if any.
	Shorthand string
	// EnvVar, if set, names the environment variable that provides the
	// default value of the flag.
	EnvVar string
	// Description is the usage text.
	Description string
}

// Usage returns the usage text, mentioning the environment variable.
func (f FlagInfo) Usage() string {
	if f.EnvVar == "" {
		return f.Description
	}
	return fmt.Sprintf("%s\nEnvironment variable: %s", f.Description, f.EnvVar)
}

// EnvDefault returns the value of the flag's environment variable, or def
// if it is unset.
func (f FlagInfo) EnvDefault(def string) string {
	if f.EnvVar == "" {
		return def
	}
	if v, ok := os.LookupEnv(f.EnvVar); ok {
		return v
	}
	return def
}

// Flags of the rangepush commands.
var (
	Schema = FlagInfo{
		Name:        "schema",
		EnvVar:      "RANGEPUSH_SCHEMA",
		Description: `YAML file describing the tables filters refer to.`,
	}

	Table = FlagInfo{
		Name:      "table",
		Shorthand: "t",
		Description: `Table the filters apply to. May be omitted when the schema
defines a single table.`,
	}

	Config = FlagInfo{
		Name:   "config",
		EnvVar: "RANGEPUSH_CONFIG",
		Description: `YAML file with query service settings. Settings it does not
mention keep their defaults.`,
	}

	Rows = FlagInfo{
		Name:        "rows",
		Description: `YAML file with the rows to check scan plans against.`,
	}

	Verbosity = FlagInfo{
		Name:        "verbosity",
		Shorthand:   "v",
		EnvVar:      "RANGEPUSH_VERBOSITY",
		Description: `Log planning decisions up to this level of detail.`,
	}

	RedactLogs = FlagInfo{
		Name:        "redact-logs",
		Description: `Replace values that may be sensitive, such as literals, in logs.`,
	}

	PrintMetrics = FlagInfo{
		Name: "metrics",
		Description: `Print the planner metrics in the Prometheus text format to
standard error when the command completes.`,
	}
)
