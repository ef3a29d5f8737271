// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kvsql/rangepush/pkg/base"
	"github.com/kvsql/rangepush/pkg/cli/cliflags"
	"github.com/kvsql/rangepush/pkg/sql/catalog"
	"github.com/kvsql/rangepush/pkg/sql/opt/idxconstraint"
	"github.com/kvsql/rangepush/pkg/sql/parser"
	"github.com/kvsql/rangepush/pkg/util/log"
	"github.com/prometheus/client_golang/prometheus"
)

// cliContext holds the values of the command-line flags.
type cliContext struct {
	schemaPath   string
	tableName    string
	configPath   string
	rowsPath     string
	verbosity    int
	redactLogs   bool
	printMetrics bool
}

var cliCtx cliContext

// setCLIContextDefaults resets the flag values, taking defaults from the
// environment where a flag has an environment variable.
func setCLIContextDefaults() {
	cliCtx = cliContext{
		schemaPath: cliflags.Schema.EnvDefault(""),
		configPath: cliflags.Config.EnvDefault(""),
	}
	if v, err := strconv.Atoi(cliflags.Verbosity.EnvDefault("0")); err == nil {
		cliCtx.verbosity = v
	}
}

// loadConfig reads the file named by --config, or returns the defaults.
func loadConfig() (*base.QueryConfig, error) {
	if cliCtx.configPath == "" {
		return base.DefaultQueryConfig(), nil
	}
	f, err := os.Open(cliCtx.configPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening configuration")
	}
	defer f.Close()
	cfg, err := base.LoadQueryConfig(f)
	return cfg, errors.Wrapf(err, "%s", cliCtx.configPath)
}

// planEnv is what the planning commands share: the settings, the table
// the filters refer to and the planner metrics.
type planEnv struct {
	cfg     *base.QueryConfig
	table   *catalog.Table
	parser  *parser.Parser
	reg     *prometheus.Registry
	metrics *idxconstraint.Metrics

	// logEvery limits the errors and warnings logged while planning a
	// batch of filters; every outcome is still printed.
	logEvery *log.EveryN
}

func loadPlanEnv(ctx context.Context) (*planEnv, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cliCtx.schemaPath == "" {
		return nil, errors.Mark(errors.Newf("--%s is required", cliflags.Schema.Name), errFlag)
	}
	f, err := os.Open(cliCtx.schemaPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening schema")
	}
	defer f.Close()
	schema, err := catalog.LoadSchema(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", cliCtx.schemaPath)
	}
	table, err := pickTable(schema, cliCtx.tableName)
	if err != nil {
		return nil, err
	}
	log.VEventf(ctx, 1, "planning over %s", table)

	reg := prometheus.NewRegistry()
	return &planEnv{
		cfg:      cfg,
		table:    table,
		parser:   &parser.Parser{Table: table, DateFormat: cfg.DateFormat},
		reg:      reg,
		metrics:  idxconstraint.NewMetrics(reg),
		logEvery: log.Every(time.Second),
	}, nil
}

func pickTable(schema *catalog.Schema, name string) (*catalog.Table, error) {
	if name != "" {
		t, ok := schema.Table(name)
		if !ok {
			return nil, errors.Newf("schema has no table %q", name)
		}
		return t, nil
	}
	if len(schema.Tables) == 1 {
		return schema.Tables[0], nil
	}
	names := make([]string, len(schema.Tables))
	for i, t := range schema.Tables {
		names[i] = t.Name
	}
	return nil, errors.WithHintf(
		errors.Mark(errors.Newf("--%s is required", cliflags.Table.Name), errFlag),
		"the schema defines tables %s", strings.Join(names, ", "))
}
