package edit

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"pgstyle/css"
	"pgstyle/pagestyle"
	"pgstyle/state"
)

type bucketReport struct {
	Field    string   `yaml:"field"`
	Outline  string   `yaml:"outline"`
	Warnings []string `yaml:"warnings,omitempty"`
}

type showReport struct {
	Matched      bool                 `yaml:"matched"`
	AllImportant bool                 `yaml:"all_important"`
	Style        *pagestyle.PageStyle `yaml:"style"`
	Opaque       []bucketReport       `yaml:"opaque,omitempty"`
}

// Show prints page style read from source as YAML.
func Show(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("show")

	selectCharset(env, cmd.String("charset"), log)

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	text, err := readSource(env, src, log)
	if err != nil {
		return err
	}

	data, err := showStyle(env, text, cmd.Bool("inspect"), log)
	if err != nil {
		return err
	}
	return writeResult(env, "", data)
}

func showStyle(env *state.LocalEnv, text string, inspect bool, log *zap.Logger) ([]byte, error) {
	s := pagestyle.New()
	rpt := showReport{
		Matched: pagestyle.NewParser(log).Parse(s, text),
		Style:   s,
	}
	rpt.AllImportant = s.AllImportant()
	if !rpt.Matched {
		log.Warn("Text does not follow page style layout, everything is kept as opaque text")
	}
	storeStyleTree(env, "source", s, rpt.Matched)

	if inspect {
		for _, b := range css.NewParser(log).Inspect(s) {
			rpt.Opaque = append(rpt.Opaque, bucketReport{
				Field:    b.Name,
				Outline:  b.Sheet.String(),
				Warnings: b.Sheet.Warnings,
			})
		}
	}

	buf := new(bytes.Buffer)
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(&rpt); err != nil {
		return nil, fmt.Errorf("unable to encode page style: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("unable to encode page style: %w", err)
	}
	return buf.Bytes(), nil
}
