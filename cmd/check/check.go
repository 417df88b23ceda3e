package check

import (
	"github.com/cockroachdb/errors"
	"github.com/refdiff/refdiff/check/diffs"
	"github.com/refdiff/refdiff/check/fieldopt"
	"github.com/refdiff/refdiff/check/filecheck"
	"github.com/refdiff/refdiff/cmd/internal/cmdutil"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	var (
		actualPaths   []string
		expectedPaths []string
		configPath    string
		precision     int
		sortBy        string
		checkData     string
		checkTypes    string
		checkOrder    string
		checkExtra    string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check actual dataset files against golden reference files.",
		Long:  `Check compares pairs of actual and golden dataset files, printing every difference found and failing if any pair diverges.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := cmdutil.Logger()
			if err != nil {
				return err
			}

			cfg := defaultConfig()
			if configPath != "" {
				if cfg, err = loadConfig(configPath); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("precision") {
				cfg.Precision = precision
			}
			for _, override := range []struct {
				name string
				raw  string
				dst  *fieldopt.Flag
			}{
				{"sort-by", sortBy, &cfg.SortBy.Flag},
				{"check-data", checkData, &cfg.CheckData.Flag},
				{"check-types", checkTypes, &cfg.CheckTypes.Flag},
				{"check-order", checkOrder, &cfg.CheckOrder.Flag},
				{"check-extra-cols", checkExtra, &cfg.CheckExtraCols.Flag},
			} {
				if !cmd.Flags().Changed(override.name) {
					continue
				}
				flag, err := fieldopt.Parse(override.raw)
				if err != nil {
					return errors.Wrapf(err, "invalid --%s", override.name)
				}
				*override.dst = flag
			}

			failures, msgs, err := filecheck.All(
				actualPaths,
				expectedPaths,
				filecheck.WithLogger(logger),
				filecheck.WithCheckOpts(cfg.checkOpts()...),
			)
			if err != nil {
				return errors.Wrap(err, "error checking files")
			}
			diffs.LogReporter{Logger: logger}.Report(msgs)
			if failures > 0 {
				return errors.Newf("%d of %d file pairs failed", failures, len(actualPaths))
			}
			logger.Info().Int("pairs", len(actualPaths)).Msg("all file pairs match")
			return nil
		},
	}

	cmd.Flags().StringSliceVar(
		&actualPaths,
		"actual",
		nil,
		"paths of the actual dataset files, in pair order",
	)
	cmd.Flags().StringSliceVar(
		&expectedPaths,
		"expected",
		nil,
		"paths of the golden reference files, in pair order",
	)
	cmd.Flags().StringVar(
		&configPath,
		"config",
		"",
		"path of a YAML comparison config; command line flags override it",
	)
	cmd.Flags().IntVar(
		&precision,
		"precision",
		defaultConfig().Precision,
		"number of decimal places to compare float values at",
	)
	cmd.Flags().StringVar(
		&sortBy,
		"sort-by",
		"none",
		"fields to sort both datasets by before comparing (all, none, or a field list)",
	)
	cmd.Flags().StringVar(
		&checkData,
		"check-data",
		"all",
		"fields whose values are compared (all, none, or a field list)",
	)
	cmd.Flags().StringVar(
		&checkTypes,
		"check-types",
		"all",
		"fields whose presence and types are compared (all, none, or a field list)",
	)
	cmd.Flags().StringVar(
		&checkOrder,
		"check-order",
		"all",
		"fields whose column ordering is compared (all, none, or a field list)",
	)
	cmd.Flags().StringVar(
		&checkExtra,
		"check-extra-cols",
		"all",
		"fields of the actual dataset checked for unexpected extras (all, none, or a field list)",
	)
	for _, required := range []string{"actual", "expected"} {
		if err := cmd.MarkFlagRequired(required); err != nil {
			panic(err)
		}
	}
	cmdutil.RegisterLoggerFlags(cmd)
	return cmd
}
