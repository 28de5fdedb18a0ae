/*
Copyright © 2024 the gridmeta authors.
This file is part of gridmeta.

gridmeta is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

gridmeta is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with gridmeta.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package gridmetautil contains the gridmeta command-line interface and
// the configuration that goes with it.
package gridmetautil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spatialmodel/gridmeta"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to gridmeta.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel specifies the minimum level of log messages to print.
              Valid levels are trace, debug, info, warning, error, fatal and panic.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "addr",
			usage: `
              addr specifies the address that the metadata server listens on.`,
			shorthand:  "a",
			defaultVal: ":8080",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "Datasets",
			usage: `
              Datasets maps dataset ids to the paths of the files that hold
              them, in the format {"id1":"/path/to/file1.nc","id2":"/path/to/file2.tif"}.
              The paths can include environment variables. Ids read from a
              configuration file are converted to lower case.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "HideAttrs",
			usage: `
              HideAttrs specifies file attributes that should not be reported.
              It can be a comma-separated list of attribute names, which are
              hidden for all formats, or a map of format names to lists of
              attribute names, in the format {"netcdf":["history"],"geotiff":["crs"]}.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags(), inspectCmd.Flags()},
		},
		{
			name: "Cache.MaxCost",
			usage: `
              Cache.MaxCost specifies the total cost of the entries that the
              in-process cache can hold. Each open file and each set of file
              attributes costs 99999.`,
			defaultVal: 1 << 30,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags(), inspectCmd.Flags()},
		},
		{
			name: "Cache.NumCounters",
			usage: `
              Cache.NumCounters specifies the number of keys whose access
              frequency is tracked by the in-process cache. It should be about
              ten times the number of entries the cache can hold.`,
			defaultVal: 100000,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags(), inspectCmd.Flags()},
		},
		{
			name: "Cache.BufferItems",
			usage: `
              Cache.BufferItems specifies the size of the in-process cache's
              access buffers.`,
			defaultVal: 64,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags(), inspectCmd.Flags()},
		},
		{
			name: "Redis.URL",
			usage: `
              Redis.URL specifies a Redis server to share file attributes
              between metadata servers, in the format
              redis://<user>:<password>@<host>:<port>/<db>. If it is empty,
              attributes are only cached in-process.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "Redis.TTL",
			usage: `
              Redis.TTL specifies how long file attributes are kept in Redis.
              Zero means that they never expire.`,
			defaultVal: 24 * time.Hour,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "Redis.Prefix",
			usage: `
              Redis.Prefix is prepended to the keys stored in Redis.`,
			defaultVal: "gridmeta:",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "Concurrency",
			usage: `
              Concurrency specifies the maximum number of files that are
              read at the same time.`,
			shorthand:  "n",
			defaultVal: runtime.GOMAXPROCS(0),
			flagsets:   []*pflag.FlagSet{inspectCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GRIDMETA")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case time.Duration:
				if option.shorthand == "" {
					set.Duration(option.name, option.defaultVal.(time.Duration), option.usage)
				} else {
					set.DurationP(option.name, option.shorthand, option.defaultVal.(time.Duration), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := strings.TrimSpace(b.String())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(serveCmd)
	Root.AddCommand(supportedCmd)
	Root.AddCommand(formatCmd)
	Root.AddCommand(inspectCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets up logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("gridmeta: problem reading configuration file: %v", err)
		}
	}
	return setLogging(Cfg)
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "gridmeta",
	Short: "Report the metadata of gridded data files.",
	Long: `gridmeta reports the format and global attributes of NetCDF, HDF5,
GeoTIFF and GRIB files, either from the command line or over HTTP.
Use the subcommands specified below to access its functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'GRIDMETA_var' where 'var' is the
name of the variable to be set, with '.' replaced by '_' (e.g. GRIDMETA_REDIS_URL).
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of gridmeta.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gridmeta v%s\n", gridmeta.Version)
	},
	DisableAutoGenTag: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve file metadata over HTTP.",
	Long: `serve starts an HTTP server that reports the metadata of the files
listed in the Datasets option. The metadata of dataset 'id' is available at
/datasets/id/file-metadata, and Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Serve(cmd.Context(), Cfg)
	},
	DisableAutoGenTag: true,
}

var supportedCmd = &cobra.Command{
	Use:   "supported",
	Short: "List the supported file formats.",
	Long: `supported prints the file formats that metadata can be read from
with this build of gridmeta.`,
	Run: func(cmd *cobra.Command, args []string) {
		r := NewRegistry(Log)
		for _, f := range r.Supported() {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
	},
	DisableAutoGenTag: true,
}

var formatCmd = &cobra.Command{
	Use:   "format file",
	Short: "Print the format of a file.",
	Long: `format prints the format of the given file, as determined by its
file name extension.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := gridmeta.Identify(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), f)
		return nil
	},
	DisableAutoGenTag: true,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect file...",
	Short: "Print the metadata of files.",
	Long: `inspect reads the given files and prints their format and
attributes as JSON, one file per line, in the order they are given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Inspect(cmd.Context(), Cfg, cmd.OutOrStdout(), args...)
	},
	DisableAutoGenTag: true,
}
