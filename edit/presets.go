package edit

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"

	"pgstyle/pagestyle"
	"pgstyle/state"
)

// Presets lists known page size presets.
func Presets(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	return writeResult(env, "", listPresets(cmd.Bool("sort")))
}

func listPresets(sorted bool) []byte {
	list := pagestyle.Presets()
	if sorted {
		names := make([]string, 0, len(list))
		byName := make(map[string]pagestyle.Preset, len(list))
		for _, p := range list {
			names = append(names, p.Name)
			byName[p.Name] = p
		}
		sort.Sort(natural.StringSlice(names))
		for i, name := range names {
			list[i] = byName[name]
		}
	}

	width := 0
	for _, p := range list {
		width = max(width, len(p.Name))
	}
	buf := new(bytes.Buffer)
	for _, p := range list {
		fmt.Fprintf(buf, "%-*s  %-10s %gmm x %gmm\n", width, p.Name, p.Description, p.Width, p.Height)
	}
	return buf.Bytes()
}
