package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/unbundle/pkg/audio"
	"github.com/user/unbundle/pkg/av"
	"github.com/user/unbundle/pkg/export"
	"github.com/user/unbundle/pkg/frames"
	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/subtitles"
)

func framesCommand() *cli.Command {
	return &cli.Command{
		Name:      "frames",
		Usage:     l10n.T("Extract frames as image files"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			trackFlag(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "frames",
				Usage:   l10n.T("Output directory"),
			},
			&cli.StringFlag{
				Name:  "frames",
				Usage: l10n.T("Comma-separated frame numbers (e.g. 0,24,48)"),
			},
			&cli.Int64Flag{
				Name:  "step",
				Usage: l10n.T("Extract every Nth frame"),
			},
			&cli.Float64Flag{
				Name:  "every",
				Usage: l10n.T("Extract one frame every N seconds"),
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
				Usage:   l10n.T("Output width (0 = derive from height or keep source)"),
			},
			&cli.IntFlag{
				Name:    "height",
				Aliases: []string{"H"},
				Usage:   l10n.T("Output height (0 = derive from width or keep source)"),
			},
			&cli.StringFlag{
				Name:  "pixel-format",
				Usage: l10n.T("Pixel format (rgb, rgba, gray)"),
			},
			&cli.StringFlag{
				Name:  "image-format",
				Value: "png",
				Usage: l10n.T("Image file type (png, jpg)"),
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Value:   1,
				Usage:   l10n.T("Parallel decoder count (1 = sequential)"),
			},
			&cli.StringFlag{
				Name:  "hardware",
				Value: "none",
				Usage: l10n.T("Hardware decoding (auto, none, or a device type such as cuda)"),
			},
		},
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			ext, err := frames.New(f, c.Int("track"))
			if err != nil {
				return err
			}
			defer ext.Close()

			sel, err := selection(c, ext, f)
			if err != nil {
				return err
			}
			opts, err := frameOptions(c)
			if err != nil {
				return err
			}
			imageExt, err := imageExtension(c.String("image-format"))
			if err != nil {
				return err
			}

			n, err := saveFrames(ext, sel, opts, c.String("out"), imageExt, c.Int("workers"))
			if err != nil {
				return err
			}
			env.log.Info(l10n.F("Saved %d frames to %s", n, c.String("out")))
			return nil
		},
	}
}

// frameOptions builds extraction options from the shared shape flags.
func frameOptions(c *cli.Context) (*frames.Options, error) {
	opts := frames.DefaultOptions().
		WithSize(c.Int("width"), c.Int("height")).
		WithHardware(parseHardwareFlag(c)).
		WithProgress(env.sink(), progressBatch).
		WithToken(env.tok)

	if s := c.String("pixel-format"); s != "" {
		pf, err := frames.ParsePixelFormat(s)
		if err != nil {
			return nil, err
		}
		opts = opts.WithFormat(pf)
	}
	return opts, nil
}

func parseHardwareFlag(c *cli.Context) av.HardwareConfig {
	return av.ParseHardware(c.String("hardware"))
}

// imageExtension validates the image file type and returns the
// extension without the dot.
func imageExtension(s string) (string, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return "png", nil
	case "jpg", "jpeg":
		return "jpg", nil
	default:
		return "", fmt.Errorf("%w: unknown image format %q (png or jpg)", media.ErrInvalidArgument, s)
	}
}

// saveFrames extracts the selected frames and writes one image file
// per frame into dir. The sequential path streams through an iterator
// so only one frame is held at a time; the parallel path materializes
// the run results first.
func saveFrames(ext *frames.Extractor, sel frames.Range, opts *frames.Options, dir, imageExt string, workers int) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}

	if workers > 1 {
		frs, err := ext.ExtractParallel(sel, opts.WithWorkers(workers))
		if err != nil {
			return 0, err
		}
		for i := range frs {
			if err := saveFrame(&frs[i], dir, imageExt); err != nil {
				return i, err
			}
		}
		return len(frs), nil
	}

	it, err := ext.Iter(sel, opts)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	n := 0
	for it.Next() {
		if err := saveFrame(it.Frame(), dir, imageExt); err != nil {
			return n, err
		}
		n++
	}
	return n, it.Err()
}

func saveFrame(fr *frames.Frame, dir, imageExt string) error {
	name := fmt.Sprintf("frame_%06d.%s", fr.Number, imageExt)
	return export.SaveImage(fr.Image(), filepath.Join(dir, name))
}

func frameCommand() *cli.Command {
	return &cli.Command{
		Name:      "frame",
		Usage:     l10n.T("Extract a single frame"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			trackFlag(),
			&cli.Int64Flag{
				Name:    "number",
				Aliases: []string{"n"},
				Usage:   l10n.T("Frame number to extract"),
			},
			&cli.Float64Flag{
				Name:    "time",
				Aliases: []string{"T"},
				Usage:   l10n.T("Timestamp in seconds instead of a frame number"),
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "frame.png",
				Usage:   l10n.T("Output image path (.png or .jpg)"),
			},
			&cli.IntFlag{
				Name:    "width",
				Aliases: []string{"W"},
				Usage:   l10n.T("Output width (0 = derive from height or keep source)"),
			},
			&cli.IntFlag{
				Name:    "height",
				Aliases: []string{"H"},
				Usage:   l10n.T("Output height (0 = derive from width or keep source)"),
			},
			&cli.StringFlag{
				Name:  "pixel-format",
				Usage: l10n.T("Pixel format (rgb, rgba, gray)"),
			},
			&cli.StringFlag{
				Name:  "hardware",
				Value: "none",
				Usage: l10n.T("Hardware decoding (auto, none, or a device type such as cuda)"),
			},
		},
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			ext, err := frames.New(f, c.Int("track"))
			if err != nil {
				return err
			}
			defer ext.Close()

			opts, err := frameOptions(c)
			if err != nil {
				return err
			}

			var fr *frames.Frame
			if c.IsSet("time") {
				fr, err = ext.FrameAtTime(c.Float64("time"), opts)
			} else {
				fr, err = ext.Frame(c.Int64("number"), opts)
			}
			if err != nil {
				return err
			}

			out := c.String("out")
			if err := export.SaveImage(fr.Image(), out); err != nil {
				return err
			}
			env.log.Info(l10n.F("Saved frame %d (t=%.3fs) to %s", fr.Number, fr.TimeSeconds, out))
			return nil
		},
	}
}

func audioCommand() *cli.Command {
	return &cli.Command{
		Name:      "audio",
		Usage:     l10n.T("Extract an audio track"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			trackFlag(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   l10n.T("Output file (default: input name with the format extension)"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   l10n.T("Audio format (wav, mp3, flac, aac; default from the output extension)"),
			},
			&cli.Float64Flag{
				Name:  "from",
				Usage: l10n.T("Range start in seconds"),
			},
			&cli.Float64Flag{
				Name:  "to",
				Usage: l10n.T("Range end in seconds"),
			},
		},
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			format, out, err := audioTarget(c.String("format"), c.String("out"), f.Path())
			if err != nil {
				return err
			}

			ax, err := audio.New(f, c.Int("track"))
			if err != nil {
				return err
			}
			ax = ax.WithToken(env.tok)

			if c.IsSet("from") || c.IsSet("to") {
				start := c.Float64("from")
				end := c.Float64("to")
				if !c.IsSet("to") {
					end = f.Duration()
				}
				err = ax.SaveRange(out, format, start, end)
			} else {
				err = ax.Save(out, format)
			}
			if err != nil {
				return err
			}
			env.log.Info(l10n.F("Saved %s audio to %s", format, out))
			return nil
		},
	}
}

// audioTarget resolves the output format and path. An explicit format
// flag wins, then the output extension; the default is WAV. An empty
// output path derives from the input name.
func audioTarget(formatFlag, out, inputPath string) (audio.Format, string, error) {
	var format audio.Format
	switch {
	case formatFlag != "":
		f, err := audio.ParseFormat(formatFlag)
		if err != nil {
			return 0, "", err
		}
		format = f
	case out != "" && filepath.Ext(out) != "":
		f, err := audio.ParseFormat(strings.TrimPrefix(filepath.Ext(out), "."))
		if err != nil {
			return 0, "", err
		}
		format = f
	default:
		format = audio.Wav
	}

	if out == "" {
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		out = base + format.Extension()
	}
	return format, out, nil
}

func subtitlesCommand() *cli.Command {
	return &cli.Command{
		Name:      "subtitles",
		Usage:     l10n.T("Extract a subtitle track"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			trackFlag(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   l10n.T("Output file (default: stdout)"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   l10n.T("Subtitle format (srt, vtt, raw; default from the output extension)"),
			},
		},
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			format, err := subtitleFormat(c.String("format"), c.String("out"))
			if err != nil {
				return err
			}

			sx, err := subtitles.New(f, c.Int("track"))
			if err != nil {
				return err
			}

			out := c.String("out")
			if out == "" {
				text, err := sx.Text(format)
				if err != nil {
					return err
				}
				fmt.Print(text)
				return nil
			}

			if err := sx.Save(out, format); err != nil {
				return err
			}
			env.log.Info(l10n.F("Saved subtitles to %s", out))
			return nil
		},
	}
}

func subtitleFormat(formatFlag, out string) (subtitles.Format, error) {
	if formatFlag != "" {
		return subtitles.ParseFormat(formatFlag)
	}
	switch strings.ToLower(filepath.Ext(out)) {
	case ".srt":
		return subtitles.SRT, nil
	case ".vtt":
		return subtitles.WebVTT, nil
	case ".txt":
		return subtitles.Raw, nil
	default:
		return subtitles.SRT, nil
	}
}
