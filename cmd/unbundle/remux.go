package main

import (
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/unbundle/pkg/remux"
)

func remuxCommand() *cli.Command {
	return &cli.Command{
		Name:      "remux",
		Usage:     l10n.T("Rewrap streams into another container without re-encoding"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Required: true,
				Usage:    l10n.T("Output file; its extension selects the container"),
			},
			&cli.BoolFlag{
				Name:  "no-video",
				Usage: l10n.T("Drop video streams"),
			},
			&cli.BoolFlag{
				Name:  "no-audio",
				Usage: l10n.T("Drop audio streams"),
			},
			&cli.BoolFlag{
				Name:  "no-subtitles",
				Usage: l10n.T("Drop subtitle streams"),
			},
		},
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			opts := remux.DefaultOptions().WithToken(env.tok)
			if c.Bool("no-video") {
				opts = opts.ExcludeVideo()
			}
			if c.Bool("no-audio") {
				opts = opts.ExcludeAudio()
			}
			if c.Bool("no-subtitles") {
				opts = opts.ExcludeSubtitles()
			}

			out := c.String("out")
			rm, err := remux.New(f, out, opts)
			if err != nil {
				return err
			}
			if err := rm.Run(); err != nil {
				return fmt.Errorf("remuxing %s: %w", f.Path(), err)
			}
			env.log.Info(l10n.F("Remuxed %s to %s", f.Path(), out))
			return nil
		},
	}
}
