package cmd

import (
	"fmt"
	"os"

	checkcmd "github.com/refdiff/refdiff/cmd/check"
	"github.com/refdiff/refdiff/cmd/rewrite"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "refdiff",
	Short: "Compare datasets against golden reference files",
	Long:  `refdiff verifies that datasets produced by a pipeline run still match previously captured golden reference files, within configurable tolerances.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(checkcmd.Command())
	rootCmd.AddCommand(rewrite.Command())
}
