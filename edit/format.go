package edit

import (
	"context"
	"errors"
	"fmt"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pgstyle/pagestyle"
	"pgstyle/state"
)

// ErrNotFormatted is returned by format --check when source text differs
// from what would be written.
var ErrNotFormatted = errors.New("page style is not in canonical form")

// Format reads page style, applies changes requested on command line and
// writes it back in canonical form.
func Format(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("format")

	selectCharset(env, cmd.String("charset"), log)

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	dst := cmd.Args().Get(1)
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	env.Overwrite = cmd.Bool("overwrite")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	text, err := readSource(env, src, log)
	if err != nil {
		return err
	}

	out, err := formatStyle(env, cmd, text, log)
	if err != nil {
		return err
	}
	if env.Rpt != nil {
		env.Rpt.StoreData("output/result.css", []byte(out))
	}

	if cmd.Bool("check") {
		if out != text {
			return fmt.Errorf("%s: %w", src, ErrNotFormatted)
		}
		log.Info("Page style is in canonical form", zap.String("source", src))
		return nil
	}
	return writeResult(env, dst, []byte(out))
}

// formatStyle parses text, applies command line changes and serializes the
// result.
func formatStyle(env *state.LocalEnv, cmd *cli.Command, text string, log *zap.Logger) (string, error) {
	s := pagestyle.New()
	matched := pagestyle.NewParser(log).Parse(s, text)
	if !matched {
		log.Warn("Text does not follow page style layout, everything is kept as opaque text")
	}
	storeStyleTree(env, "source", s, matched)

	// snapshot to tell real changes from no-op flags
	original := pagestyle.New()
	s.CopyInto(original)

	touched, err := applyFlags(cmd, s, log)
	if err != nil {
		return "", err
	}
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("resulting page style is invalid: %w", err)
	}

	storeStyleTree(env, "result", s, matched)

	switch {
	case !touched:
	case s.Equivalent(original):
		log.Info("Requested changes do not alter page style")
	default:
		log.Info("Page style changed")
	}
	return s.CSSText(), nil
}
