// Package main is the entry point for survival-sim.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"survival-sim/internal/logger"
	"survival-sim/internal/scenario"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("", "%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "survival-sim",
		Short: "Attack survival simulator",
		Long: `survival-sim exposes populations of systems to sequences of random
attacks and reports how their scores evolve.

For every system it derives the cumulative score, the cumulative success
count, the relative frequency and the normalized ratio, and for the whole
population it builds histograms of the terminal scores and of the scores at
a reporting index.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
	}

	rootCmd.PersistentFlags().String("log-level", "", "ログレベル (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRunCmd(),
		newSweepCmd(),
		newServeCmd(),
		newPresetsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// setupLogging はフラグ、環境変数の順でログレベルを決める
func setupLogging(cmd *cobra.Command) error {
	logger.Default.SetOutput(cmd.ErrOrStderr())

	levelName, _ := cmd.Flags().GetString("log-level")
	if levelName == "" {
		levelName = os.Getenv("SURVIVAL_SIM_LOG_LEVEL")
	}
	if levelName == "" {
		return nil
	}
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return err
	}
	logger.Default.SetLevel(level)
	return nil
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				_ = json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "survival-sim version %s\n", version)
		},
	}
	cmd.Flags().Bool("json", false, "JSONで出力")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List preset scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			infos := scenario.PresetDescriptions()
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(infos)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "利用可能なプリセットシナリオ:")
			fmt.Fprintln(out)
			for _, p := range infos {
				fmt.Fprintf(out, "  %-10s %5d systems x %5d attacks  p=%-4g %s\n",
					p.Name, p.Systems, p.Attacks, p.Probability, p.Description)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "使用例: survival-sim run --preset fair")
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "JSONで出力")
	return cmd
}
