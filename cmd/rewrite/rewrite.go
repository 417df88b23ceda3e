package rewrite

import (
	"github.com/cockroachdb/errors"
	"github.com/refdiff/refdiff/cmd/internal/cmdutil"
	"github.com/refdiff/refdiff/parquetio"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	var inferDatetimes bool

	cmd := &cobra.Command{
		Use:   "rewrite <in> <out>",
		Short: "Rewrite a dataset file as a normalized golden file.",
		Long:  `Rewrite loads a dataset file, applies the loader's normalization (null tokens, datetime inference, geometry detection, text repair) and writes it back out, which is how golden reference files are regenerated.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := cmdutil.Logger()
			if err != nil {
				return err
			}
			ds, err := parquetio.ReadFile(args[0], parquetio.WithDatetimeInference(inferDatetimes))
			if err != nil {
				return errors.Wrapf(err, "error loading %s", args[0])
			}
			if err := parquetio.WriteFile(args[1], ds); err != nil {
				return errors.Wrapf(err, "error writing %s", args[1])
			}
			logger.Info().
				Str("in", args[0]).
				Str("out", args[1]).
				Int("rows", ds.NumRows()).
				Int("columns", ds.NumColumns()).
				Msg("rewrote golden file")
			return nil
		},
	}

	cmd.Flags().BoolVar(
		&inferDatetimes,
		"infer-datetimes",
		true,
		"whether text columns that parse as datetimes are converted on load",
	)
	cmdutil.RegisterLoggerFlags(cmd)
	return cmd
}
