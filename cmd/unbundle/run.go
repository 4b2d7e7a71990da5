package main

import (
	"fmt"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/unbundle/pkg/audio"
	"github.com/user/unbundle/pkg/av"
	"github.com/user/unbundle/pkg/config"
	"github.com/user/unbundle/pkg/export"
	"github.com/user/unbundle/pkg/frames"
	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/remux"
	"github.com/user/unbundle/pkg/subtitles"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     l10n.T("Run a YAML job file producing multiple outputs from one input"),
		ArgsUsage: "<job.yaml>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("%w: missing job file argument", media.ErrInvalidArgument)
			}

			job, err := config.Load(path)
			if err != nil {
				return err
			}
			if err := job.Validate(); err != nil {
				return err
			}

			// Job-file settings win over the global flags for this run.
			if job.FFmpegLogLevel != "" {
				level, err := av.ParseNativeLogLevel(job.FFmpegLogLevel)
				if err != nil {
					return err
				}
				av.SetNativeLogLevel(level)
			}

			f, err := media.Open(job.Input, media.WithLogger(env.log))
			if err != nil {
				return err
			}
			defer f.Close()

			hw := av.ParseHardware(job.Hardware)
			for i, out := range job.Outputs {
				env.log.Info(l10n.F("Output %d/%d: %s -> %s", i+1, len(job.Outputs), out.Type, out.Path))
				if err := runOutput(f, out, hw); err != nil {
					return fmt.Errorf("output %d (%s): %w", i+1, out.Type, err)
				}
			}
			env.log.Info(l10n.F("Job complete: %d outputs from %s", len(job.Outputs), job.Input))
			return nil
		},
	}
}

func runOutput(f *media.File, out config.Output, hw av.HardwareConfig) error {
	switch out.Type {
	case "frames":
		return runFrames(f, out, hw)
	case "audio":
		return runAudio(f, out)
	case "subtitles":
		return runSubtitles(f, out)
	case "thumbnail":
		return runThumbnail(f, out)
	case "grid":
		return runGrid(f, out)
	case "gif":
		return runGIF(f, out)
	case "waveform":
		return runWaveform(f, out)
	case "loudness":
		return runLoudness(f, out)
	case "remux":
		return runRemux(f, out)
	default:
		return fmt.Errorf("%w: unknown output type %q", media.ErrInvalidArgument, out.Type)
	}
}

// jobSelection builds the frame range from an output's selection fields,
// falling back to the whole track.
func jobSelection(out config.Output, ext *frames.Extractor, f *media.File) (frames.Range, error) {
	if len(out.Frames) > 0 {
		return frames.List(out.Frames), nil
	}
	if out.Every > 0 {
		return frames.TimeStride{Period: out.Every}, nil
	}
	if out.Start > 0 || out.End > 0 {
		span := frames.TimeSpan{Start: out.Start, End: out.End}
		if span.End == 0 {
			span.End = f.Duration()
		}
		return span, nil
	}
	return wholeTrack(ext, f)
}

func jobFrameOptions(out config.Output, hw av.HardwareConfig) (*frames.Options, error) {
	opts := frames.DefaultOptions().
		WithSize(out.Width, out.Height).
		WithHardware(hw).
		WithProgress(env.sink(), progressBatch).
		WithToken(env.tok)

	if out.PixelFormat != "" {
		pf, err := frames.ParsePixelFormat(out.PixelFormat)
		if err != nil {
			return nil, err
		}
		opts = opts.WithFormat(pf)
	}
	return opts, nil
}

func runFrames(f *media.File, out config.Output, hw av.HardwareConfig) error {
	ext, err := frames.New(f, out.Track)
	if err != nil {
		return err
	}
	defer ext.Close()

	sel, err := jobSelection(out, ext, f)
	if err != nil {
		return err
	}
	opts, err := jobFrameOptions(out, hw)
	if err != nil {
		return err
	}
	imageExt, err := imageExtension(out.Format)
	if err != nil {
		return err
	}

	n, err := saveFrames(ext, sel, opts, out.Path, imageExt, out.Workers)
	if err != nil {
		return err
	}
	env.log.Info(l10n.F("Saved %d frames to %s", n, out.Path))
	return nil
}

func runAudio(f *media.File, out config.Output) error {
	format, path, err := audioTarget(out.Format, out.Path, f.Path())
	if err != nil {
		return err
	}

	ax, err := audio.New(f, out.Track)
	if err != nil {
		return err
	}
	ax = ax.WithToken(env.tok)

	if out.Start > 0 || out.End > 0 {
		end := out.End
		if end == 0 {
			end = f.Duration()
		}
		return ax.SaveRange(path, format, out.Start, end)
	}
	return ax.Save(path, format)
}

func runSubtitles(f *media.File, out config.Output) error {
	format, err := subtitleFormat(out.Format, out.Path)
	if err != nil {
		return err
	}
	sx, err := subtitles.New(f, out.Track)
	if err != nil {
		return err
	}
	return sx.Save(out.Path, format)
}

func runThumbnail(f *media.File, out config.Output) error {
	maxDim := out.MaxDim
	if maxDim <= 0 {
		maxDim = 320
	}

	if out.Smart {
		samples := out.Samples
		if samples <= 0 {
			samples = export.DefaultSmartSamples
		}
		th, err := export.SmartThumbnail(f, samples, maxDim)
		if err != nil {
			return err
		}
		return export.SaveImage(th, out.Path)
	}

	th, err := export.Thumbnail(f, out.Timestamp, maxDim)
	if err != nil {
		return err
	}
	return export.SaveImage(th, out.Path)
}

func runGrid(f *media.File, out config.Output) error {
	opts := export.DefaultGridOptions().
		WithCaptions(!out.NoCaptions).
		WithProgress(env.sink()).
		WithToken(env.tok)
	if out.Columns > 0 || out.Rows > 0 {
		opts = opts.WithLayout(out.Columns, out.Rows)
	}
	if out.CellWidth > 0 {
		opts = opts.WithCellWidth(out.CellWidth)
	}

	img, err := export.Grid(f, opts)
	if err != nil {
		return err
	}
	return export.SaveImage(img, out.Path)
}

func runGIF(f *media.File, out config.Output) error {
	ext, err := frames.New(f, out.Track)
	if err != nil {
		return err
	}
	sel, err := jobSelection(out, ext, f)
	ext.Close()
	if err != nil {
		return err
	}

	opts := export.DefaultGIFOptions().
		WithWidth(out.Width).
		WithLoopCount(out.Loop).
		WithProgress(env.sink()).
		WithToken(env.tok)
	if out.Delay > 0 {
		opts = opts.WithDelay(out.Delay)
	}
	return export.GIF(f, out.Path, sel, opts)
}

func runWaveform(f *media.File, out config.Output) error {
	ax, err := audio.New(f, out.Track)
	if err != nil {
		return err
	}
	ax = ax.WithToken(env.tok)

	wopts := audio.DefaultWaveformOptions()
	if out.Bins > 0 {
		wopts = wopts.WithBins(out.Bins)
	}
	if out.Start > 0 || out.End > 0 {
		end := out.End
		if end == 0 {
			end = f.Duration()
		}
		wopts = wopts.WithRange(out.Start, end)
	}

	data, err := ax.Waveform(wopts)
	if err != nil {
		return err
	}

	popts := export.DefaultWaveformPNGOptions()
	if out.Width > 0 || out.Height > 0 {
		popts = popts.WithSize(out.Width, out.Height)
	}
	return export.WaveformPNG(data, out.Path, popts)
}

func runLoudness(f *media.File, out config.Output) error {
	ax, err := audio.New(f, out.Track)
	if err != nil {
		return err
	}
	ax = ax.WithToken(env.tok)

	info, err := ax.Loudness()
	if err != nil {
		return err
	}

	report := fmt.Sprintf("peak: %.6f\npeak_dbfs: %.2f\nrms: %.6f\nrms_dbfs: %.2f\nduration: %.3f\nsamples: %d\n",
		info.Peak, info.PeakDBFS, info.RMS, info.RMSDBFS, info.Duration, info.TotalSamples)
	return os.WriteFile(out.Path, []byte(report), 0o644)
}

func runRemux(f *media.File, out config.Output) error {
	opts := remux.DefaultOptions().WithToken(env.tok)
	if out.ExcludeVideo {
		opts = opts.ExcludeVideo()
	}
	if out.ExcludeAudio {
		opts = opts.ExcludeAudio()
	}
	if out.ExcludeSubtitles {
		opts = opts.ExcludeSubtitles()
	}

	rm, err := remux.New(f, out.Path, opts)
	if err != nil {
		return err
	}
	return rm.Run()
}
