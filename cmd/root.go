/*
Copyright © 2024 Zheng 'Vic' Luo vicluo96@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/htfy96/handoff/internal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/adrg/xdg"
	"github.com/phuslu/log"
)

var cfgFile string

func initFromGlobalConfig() {

	log.DefaultLogger.Level = log.ParseLevel(viper.GetString("loglevel"))
	log.DefaultLogger = log.Logger{
		Level:      log.ParseLevel(viper.GetString("loglevel")),
		Caller:     1,
		TimeField:  "time",
		TimeFormat: "2006-01-02 15:04:05",
		Writer: &log.ConsoleWriter{
			ColorOutput: true,
		},
	}
	internal.StateDir = viper.GetString("state_dir")
	if _, err := os.Stat(internal.StateDir); os.IsNotExist(err) {
		log.Info().Msgf("Creating state directory at %s", internal.StateDir)
	}
	// create the directory if it doesn't exist
	err := os.MkdirAll(internal.StateDir, 0755)
	if err != nil {
		log.Fatal().Msgf("error creating state directory: %v", err)
	}

	internal.GlobalReports, err = internal.ReadReports()
	if err != nil {
		log.Fatal().Msgf("error reading reports: %v", err)
	}

}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "handoff {run | new-config | stats} [flags...]",
	Short: "Run producer/consumer handoff scenarios and inspect their reports",
	Long: `handoff runs configurable producer/consumer scenarios over a blocking
FIFO handoff queue and records a report of every run.

Scenarios are described in a ` + internal.ScenarioFileName + ` file: how many producers,
how many items each one pushes, how many consumers drain them, and the
delays in between. Check subcommands for details.`,

	Run: func(cmd *cobra.Command, args []string) {
		log.Info().Msgf("state path: %s", internal.StateDir)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Here you will define your flags and configuration settings.
	// Cobra supports persistent flags, which, if defined here,
	// will be global for your application.

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.handoff.yaml)")
	rootCmd.PersistentFlags().String("state_dir", "", "state directory (default is $XDG_STATE_HOME/handoff)")
	viper.BindPFlag("state_dir", rootCmd.PersistentFlags().Lookup("state_dir"))
	rootCmd.PersistentFlags().String("loglevel", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	viper.BindPFlag("loglevel", rootCmd.PersistentFlags().Lookup("loglevel"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("state_dir", xdg.StateHome+"/handoff")
	viper.SetDefault("loglevel", "warn")
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".handoff" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".handoff")
	}
	viper.SetEnvPrefix("HANDOFF")

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	initFromGlobalConfig()
}
