package check

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/refdiff/refdiff/check"
	"github.com/refdiff/refdiff/check/contentcheck"
	"github.com/refdiff/refdiff/check/fieldopt"
	"gopkg.in/yaml.v3"
)

// flagValue decodes a field-selection flag from YAML: either the
// scalars "all"/"none" (or a comma list) or a sequence of field names.
type flagValue struct {
	fieldopt.Flag
}

func (f *flagValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		parsed, err := fieldopt.Parse(s)
		if err != nil {
			return err
		}
		f.Flag = parsed
		return nil
	case yaml.SequenceNode:
		var fields []string
		if err := node.Decode(&fields); err != nil {
			return err
		}
		f.Flag = fieldopt.Fields(fields...)
		return nil
	default:
		return errors.Newf("field flag must be a string or a list, line %d", node.Line)
	}
}

type config struct {
	Precision      int       `yaml:"precision"`
	SortBy         flagValue `yaml:"sort_by"`
	CheckData      flagValue `yaml:"check_data"`
	CheckTypes     flagValue `yaml:"check_types"`
	CheckOrder     flagValue `yaml:"check_order"`
	CheckExtraCols flagValue `yaml:"check_extra_cols"`
}

func defaultConfig() config {
	return config{
		Precision: contentcheck.DefaultPrecision,
		SortBy:    flagValue{fieldopt.None()},
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "error reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

func (c config) checkOpts() []check.Opt {
	return []check.Opt{
		check.WithPrecision(c.Precision),
		check.WithSortBy(c.SortBy.Flag),
		check.WithCheckData(c.CheckData.Flag),
		check.WithCheckTypes(c.CheckTypes.Flag),
		check.WithCheckOrder(c.CheckOrder.Flag),
		check.WithCheckExtraCols(c.CheckExtraCols.Flag),
	}
}
