package main

import (
	"fmt"
	"image"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/unbundle/pkg/audio"
	"github.com/user/unbundle/pkg/export"
	"github.com/user/unbundle/pkg/frames"
)

func thumbnailCommand() *cli.Command {
	return &cli.Command{
		Name:      "thumbnail",
		Usage:     l10n.T("Generate a thumbnail image"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "thumbnail.png",
				Usage:   l10n.T("Output image path (.png or .jpg)"),
			},
			&cli.Float64Flag{
				Name:    "time",
				Aliases: []string{"T"},
				Usage:   l10n.T("Timestamp in seconds to take the thumbnail from"),
			},
			&cli.Int64Flag{
				Name:    "frame",
				Aliases: []string{"n"},
				Usage:   l10n.T("Frame number instead of a timestamp"),
			},
			&cli.BoolFlag{
				Name:  "smart",
				Usage: l10n.T("Pick the most detailed frame from evenly spaced candidates"),
			},
			&cli.IntFlag{
				Name:  "samples",
				Value: export.DefaultSmartSamples,
				Usage: l10n.T("Candidate count for --smart"),
			},
			&cli.IntFlag{
				Name:  "max-dim",
				Value: 320,
				Usage: l10n.T("Longest edge of the thumbnail in pixels"),
			},
		},
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			maxDim := c.Int("max-dim")
			var img image.Image
			switch {
			case c.Bool("smart"):
				img, err = export.SmartThumbnail(f, c.Int("samples"), maxDim)
			case c.IsSet("frame"):
				img, err = export.ThumbnailFrame(f, c.Int64("frame"), maxDim)
			default:
				img, err = export.Thumbnail(f, c.Float64("time"), maxDim)
			}
			if err != nil {
				return err
			}

			out := c.String("out")
			if err := export.SaveImage(img, out); err != nil {
				return err
			}
			env.log.Info(l10n.F("Saved thumbnail to %s", out))
			return nil
		},
	}
}

func gridCommand() *cli.Command {
	return &cli.Command{
		Name:      "grid",
		Usage:     l10n.T("Render a contact sheet of evenly spaced frames"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "grid.png",
				Usage:   l10n.T("Output image path (.png or .jpg)"),
			},
			&cli.IntFlag{
				Name:    "columns",
				Aliases: []string{"c"},
				Value:   4,
				Usage:   l10n.T("Grid columns"),
			},
			&cli.IntFlag{
				Name:    "rows",
				Aliases: []string{"r"},
				Value:   4,
				Usage:   l10n.T("Grid rows"),
			},
			&cli.IntFlag{
				Name:  "cell-width",
				Value: 320,
				Usage: l10n.T("Width of each cell in pixels"),
			},
			&cli.BoolFlag{
				Name:  "no-captions",
				Usage: l10n.T("Omit timestamp captions"),
			},
			&cli.StringFlag{
				Name:  "font",
				Usage: l10n.T("TTF font file for captions"),
			},
		},
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			opts := export.DefaultGridOptions().
				WithLayout(c.Int("columns"), c.Int("rows")).
				WithCellWidth(c.Int("cell-width")).
				WithCaptions(!c.Bool("no-captions")).
				WithProgress(env.sink()).
				WithToken(env.tok)
			opts.FontPath = c.String("font")

			img, err := export.Grid(f, opts)
			if err != nil {
				return err
			}

			out := c.String("out")
			if err := export.SaveImage(img, out); err != nil {
				return err
			}
			env.log.Info(l10n.F("Saved %dx%d grid to %s", opts.Columns, opts.Rows, out))
			return nil
		},
	}
}

func gifCommand() *cli.Command {
	return &cli.Command{
		Name:      "gif",
		Usage:     l10n.T("Export a frame range as an animated GIF"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "out.gif",
				Usage:   l10n.T("Output GIF path"),
			},
			&cli.Float64Flag{
				Name:  "from",
				Usage: l10n.T("Range start in seconds"),
			},
			&cli.Float64Flag{
				Name:  "to",
				Usage: l10n.T("Range end in seconds"),
			},
			&cli.IntFlag{
				Name:    "width",
				Aliases: []string{"W"},
				Usage:   l10n.T("Output width (0 = source width)"),
			},
			&cli.IntFlag{
				Name:  "delay",
				Value: export.DefaultGIFDelay,
				Usage: l10n.T("Delay between frames in hundredths of a second"),
			},
			&cli.IntFlag{
				Name:  "loop",
				Usage: l10n.T("Loop count (0 = forever, -1 = play once)"),
			},
		},
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			ext, err := frames.New(f, -1)
			if err != nil {
				return err
			}
			sel, err := selection(c, ext, f)
			ext.Close()
			if err != nil {
				return err
			}

			opts := export.DefaultGIFOptions().
				WithWidth(c.Int("width")).
				WithDelay(c.Int("delay")).
				WithLoopCount(c.Int("loop")).
				WithProgress(env.sink()).
				WithToken(env.tok)

			out := c.String("out")
			if err := export.GIF(f, out, sel, opts); err != nil {
				return err
			}
			env.log.Info(l10n.F("Saved GIF to %s", out))
			return nil
		},
	}
}

func waveformCommand() *cli.Command {
	return &cli.Command{
		Name:      "waveform",
		Usage:     l10n.T("Render an audio waveform image"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			trackFlag(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "waveform.png",
				Usage:   l10n.T("Output PNG path"),
			},
			&cli.IntFlag{
				Name:  "bins",
				Value: audio.DefaultWaveformBins,
				Usage: l10n.T("Number of reduction bins"),
			},
			&cli.Float64Flag{
				Name:  "from",
				Usage: l10n.T("Range start in seconds"),
			},
			&cli.Float64Flag{
				Name:  "to",
				Usage: l10n.T("Range end in seconds"),
			},
			&cli.IntFlag{
				Name:    "width",
				Aliases: []string{"W"},
				Usage:   l10n.T("Image width in pixels"),
			},
			&cli.IntFlag{
				Name:    "height",
				Aliases: []string{"H"},
				Usage:   l10n.T("Image height in pixels"),
			},
		},
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			ax, err := audio.New(f, c.Int("track"))
			if err != nil {
				return err
			}
			ax = ax.WithToken(env.tok)

			wopts := audio.DefaultWaveformOptions().WithBins(c.Int("bins"))
			if c.IsSet("from") || c.IsSet("to") {
				end := c.Float64("to")
				if !c.IsSet("to") {
					end = f.Duration()
				}
				wopts = wopts.WithRange(c.Float64("from"), end)
			}

			data, err := ax.Waveform(wopts)
			if err != nil {
				return err
			}

			popts := export.DefaultWaveformPNGOptions()
			if c.IsSet("width") || c.IsSet("height") {
				popts = popts.WithSize(c.Int("width"), c.Int("height"))
			}

			out := c.String("out")
			if err := export.WaveformPNG(data, out, popts); err != nil {
				return err
			}
			env.log.Info(l10n.F("Saved waveform (%d bins) to %s", len(data.Bins), out))
			return nil
		},
	}
}

func loudnessCommand() *cli.Command {
	return &cli.Command{
		Name:      "loudness",
		Usage:     l10n.T("Measure peak and RMS loudness of an audio track"),
		ArgsUsage: "<input>",
		Flags:     []cli.Flag{trackFlag()},
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			ax, err := audio.New(f, c.Int("track"))
			if err != nil {
				return err
			}
			ax = ax.WithToken(env.tok)

			info, err := ax.Loudness()
			if err != nil {
				return err
			}

			fmt.Println(l10n.F("Peak:     %.4f (%.2f dBFS)", info.Peak, info.PeakDBFS))
			fmt.Println(l10n.F("RMS:      %.4f (%.2f dBFS)", info.RMS, info.RMSDBFS))
			fmt.Println(l10n.F("Duration: %.2fs (%d samples)", info.Duration, info.TotalSamples))
			return nil
		},
	}
}
