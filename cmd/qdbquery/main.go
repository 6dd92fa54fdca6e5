/*
 * Copyright 2024 QuestDB
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	questdb "github.com/questdb/questdb-query-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// options are the flags of the tool. Each one can also be set as a QDB_* environment
// variable, e.g. QDB_PASSWORD.
type options struct {
	questdb.EndpointConfig `mapstructure:",squash"`

	Chunks   int           `mapstructure:"chunks"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Show     int           `mapstructure:"show"`
	LogLevel string        `mapstructure:"log-level"`
	Metrics  bool          `mapstructure:"metrics"`
	Output   string        `mapstructure:"output"`
}

func main() {
	v := viper.New()
	v.SetEnvPrefix("QDB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "qdbquery [flags] QUERY",
		Short: "Benchmark downloading a QuestDB query result in concurrent chunks",
		Long: `qdbquery runs a query against the HTTP interface of QuestDB, downloads the whole
result in the given number of concurrent chunks and prints the transfer statistics.

Example:
  qdbquery --host localhost --chunks 8 "SELECT * FROM trips"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts options
			if err := v.Unmarshal(&opts); err != nil {
				return fmt.Errorf("failed to parse options: %w", err)
			}
			return run(cmd.Context(), &opts, args[0])
		},
	}

	flags := root.Flags()
	flags.String("host", "localhost", "QuestDB host")
	flags.Int("port", 0, "QuestDB HTTP port (default 9000, or 443 with --https)")
	flags.Bool("https", false, "Use HTTPS")
	flags.String("username", "", "Basic auth user")
	flags.String("password", "", "Basic auth password")
	flags.String("token", "", "Bearer token")
	flags.Int("chunks", questdb.DefaultChunks, "Number of concurrent chunks to download the result in")
	flags.Duration("timeout", questdb.DefaultTimeout, "Timeout of each HTTP request")
	flags.Int("show", 0, "Print the first N rows of the result")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.Bool("metrics", false, "Print the Prometheus metrics of the run")
	flags.StringP("output", "o", "", "Write the result to this file in the Arrow IPC stream format")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options, query string) error {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	endpoint, err := questdb.NewEndpoint(opts.EndpointConfig)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	c := questdb.NewClient(&questdb.Config{
		Endpoint: endpoint,
		Timeout:  opts.Timeout,
		Logger:   log,
		Metrics:  questdb.NewMetrics(registry),
	})

	q := c.Query(query)
	q.Chunks = opts.Chunks

	log.WithField("endpoint", endpoint.String()).Infof("running query in %d chunks", q.Chunks)
	result, err := q.Execute(ctx)
	if err != nil {
		return err
	}
	defer result.Release()

	if opts.Show > 0 {
		if err := printRows(result, opts.Show); err != nil {
			return err
		}
	}
	fmt.Println(result.Stats)

	if opts.Output != "" {
		if err := writeOutput(result, opts.Output); err != nil {
			return err
		}
		log.Infof("wrote %d rows to %s", result.NumRows(), opts.Output)
	}

	if opts.Metrics {
		return printMetrics(registry)
	}
	return nil
}

func printRows(result *questdb.Result, n int) error {
	values, err := result.Head(n)
	if err != nil {
		return err
	}

	header := make([]string, len(result.Schema))
	for i, f := range result.Schema {
		header[i] = f.Name
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	for _, row := range values {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			if ts, ok := v.(time.Time); ok {
				cells[i] = ts.Format(time.RFC3339Nano)
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		table.Append(cells)
	}
	table.Render()
	return nil
}

func writeOutput(result *questdb.Result, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return result.WriteIPC(f)
}

func printMetrics(registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			return err
		}
	}
	return nil
}
