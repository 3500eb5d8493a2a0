package edit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pgstyle/pagestyle"
	"pgstyle/preview"
	"pgstyle/state"
)

// Preview renders page geometry thumbnail for page style read from source.
func Preview(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("preview")

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

	cfg := env.Cfg.Preview
	if cmd.IsSet("pixels") {
		cfg.Size = int(cmd.Int("pixels"))
		if cfg.Size < 64 || cfg.Size > 4096 {
			return fmt.Errorf("--pixels must be between 64 and 4096, got %d", cfg.Size)
		}
	}

	text, err := readSource(env, src, log)
	if err != nil {
		return err
	}
	s := pagestyle.New()
	matched := pagestyle.NewParser(log).Parse(s, text)
	if !matched {
		log.Warn("Text does not follow page style layout, previewing defaults")
	}
	if _, err := applyFlags(cmd, s, log); err != nil {
		return err
	}
	storeStyleTree(env, "preview", s, matched)

	r := preview.NewRenderer(&cfg, env.Log)
	img, g, err := r.Render(s)
	if err != nil {
		return fmt.Errorf("unable to render preview: %w", err)
	}

	if dst, err = previewDestination(r, src, dst, s, g); err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	if err := r.Encode(buf, img, g, dst); err != nil {
		return err
	}
	if env.Rpt != nil {
		env.Rpt.StoreData("output/"+filepath.Base(dst), buf.Bytes())
	}
	log.Info("Writing preview", zap.String("file", dst), zap.String("page", g.Label), zap.Stringer("bounds", img.Bounds()))
	return writeResult(env, dst, buf.Bytes())
}

// previewDestination returns file name to write thumbnail to. Name is built
// from template when destination is empty or an existing directory.
func previewDestination(r *preview.Renderer, src, dst string, s *pagestyle.PageStyle, g preview.Geometry) (string, error) {
	dir := ""
	if len(dst) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("unable to get working directory: %w", err)
		}
		dir = wd
	} else if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		dir = dst
	}
	if dir == "" {
		return dst, nil
	}

	name, err := r.OutputName(src, s, g)
	if err != nil {
		return "", fmt.Errorf("unable to build preview file name: %w", err)
	}
	return filepath.Join(dir, name), nil
}
