/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/htfy96/handoff/internal"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Inspect saved run reports (Check subcommands)",
	Long: `Inspect the reports saved by previous runs.
Each scenario keeps its most recent report in the state directory. Check subcommands for more details.`,
	Run: func(cmd *cobra.Command, args []string) {
		println("Please specify a subcommand for stats operations.")
		os.Exit(1)
	},
}

var statsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all saved reports",
	Long:  "List all run reports in the state directory",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("All Reports:")
		for scenario, report := range internal.GlobalReports {
			fmt.Printf("Scenario: %s. File: %s\n", scenario, report.GetPath())
		}
	},
}

var statsCatCmd = &cobra.Command{
	Use:   "cat {scenario}",
	Short: "Display the report of a scenario",
	Long:  "Display the most recent run report for the specified scenario",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scenario := args[0]
		report, ok := internal.GlobalReports[scenario]
		if !ok {
			log.Fatal().Msgf("No report found for scenario: %s\n", scenario)
			return
		}
		fmt.Printf("Scenario: %s\n", scenario)
		fmt.Printf("File: %s\n", report.GetPath())
		fmt.Println(report.String())
	},
}

var statsResetAllCmd = &cobra.Command{
	Use:   "reset-all",
	Short: "Delete all saved reports",
	Long:  "Delete all saved run reports, removing the state directory",
	Run: func(cmd *cobra.Command, args []string) {
		err := os.RemoveAll(internal.StateDir)
		if err != nil {
			log.Fatal().Msgf("error removing state directory: %v", err)
		}
		fmt.Printf("State directory %s removed\n", internal.StateDir)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsLsCmd)
	statsCmd.AddCommand(statsCatCmd)
	statsCmd.AddCommand(statsResetAllCmd)
}
