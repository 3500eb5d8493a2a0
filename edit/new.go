package edit

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pgstyle/state"
)

// New writes page style built from configuration and command line.
func New(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("new")

	dst := cmd.Args().Get(0)
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	env.Overwrite = cmd.Bool("overwrite")

	s := env.Cfg.Style.NewPageStyle()
	if _, err := applyFlags(cmd, s, log); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("resulting page style is invalid: %w", err)
	}

	storeStyleTree(env, "result", s, true)

	out := s.CSSText()
	if env.Rpt != nil {
		env.Rpt.StoreData("output/result.css", []byte(out))
	}
	log.Debug("Page style created", zap.Stringer("mode", s.Mode), zap.Int("bytes", len(out)))
	return writeResult(env, dst, []byte(out))
}
