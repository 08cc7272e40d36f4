/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/htfy96/handoff/internal"
	"github.com/pelletier/go-toml/v2"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [scenario.toml]",
	Short: "Run a producer/consumer scenario",
	Long: `Run a producer/consumer scenario and save its report.
The scenario is read from the given file, or from ` + internal.ScenarioFileName + ` in the
current directory if no file is given.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scenarioPath := internal.ScenarioFileName
		if len(args) > 0 {
			scenarioPath = args[0]
		}
		scenario, err := internal.LoadScenarioFile(scenarioPath)
		if err != nil {
			log.Fatal().Msgf("error loading scenario: %v", err)
			return
		}
		fmt.Printf("Running scenario %s...\n", scenario.Name)
		pipeline := internal.Pipeline{
			Scenario:     scenario,
			ShowProgress: true,
		}
		report, err := pipeline.Run(cmd.Context())
		if err != nil {
			log.Warn().Msgf("scenario finished with errors: %v", err)
		}
		if err := report.Save(); err != nil {
			log.Fatal().Msgf("error saving report: %v", err)
			return
		}
		fmt.Printf("Delivered %d/%d items in %s\n", report.Delivered, report.Expected, report.Duration)
	},
}

// newConfigCmd represents the new-config command
var newConfigCmd = &cobra.Command{
	Use:   "new-config",
	Short: "Create a new scenario file",
	Long:  "Create a sample scenario file for handoff in the current directory",
	Run: func(cmd *cobra.Command, args []string) {
		scenario := internal.SampleScenarioFile()
		scenarioBytes, err := toml.Marshal(scenario)
		if err != nil {
			log.Fatal().Msgf("error marshaling sample scenario: %v", err)
		}
		err = os.WriteFile(internal.ScenarioFileName, scenarioBytes, 0644)
		if err != nil {
			log.Fatal().Msgf("error writing sample scenario file: %v", err)
		}
		fmt.Printf("Sample scenario file created at %s\n", internal.ScenarioFileName)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(newConfigCmd)
}
