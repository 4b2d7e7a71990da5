// Package main provides the CLI entry point for unbundle.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/unbundle/pkg/adapters/logger"
	"github.com/user/unbundle/pkg/adapters/termprogress"
	"github.com/user/unbundle/pkg/av"
	"github.com/user/unbundle/pkg/frames"
	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/ports"
	"github.com/user/unbundle/pkg/progress"
)

var version = "dev"

// progressBatch throttles per-frame progress reports on long scans.
const progressBatch = 25

// appEnv carries the state every command shares: the logger, the
// cancellation token wired to SIGINT/SIGTERM, and the terminal
// progress bar (nil when quiet).
type appEnv struct {
	log ports.Logger
	tok *progress.Token
	bar *termprogress.Sink
}

var env appEnv

// sink returns the progress sink, or a nil interface when progress
// rendering is off.
func (e *appEnv) sink() ports.ProgressSink {
	if e.bar == nil {
		return nil
	}
	return e.bar
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %v", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "unbundle",
		Usage:   l10n.T("Extract frames, audio and subtitles from video files"),
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   l10n.T("Log level (debug, info, warn, error)"),
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   l10n.T("Suppress log output and progress bars"),
			},
			&cli.StringFlag{
				Name:  "ffmpeg-log-level",
				Value: "error",
				Usage: l10n.T("FFmpeg library log level (quiet, error, warning, info, debug)"),
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			infoCommand(),
			probeCommand(),
			validateCommand(),
			framesCommand(),
			frameCommand(),
			audioCommand(),
			subtitlesCommand(),
			thumbnailCommand(),
			gridCommand(),
			gifCommand(),
			waveformCommand(),
			loudnessCommand(),
			keyframesCommand(),
			timingCommand(),
			scenesCommand(),
			packetsCommand(),
			remuxCommand(),
			runCommand(),
		},
	}
}

// setup builds the shared environment before any command runs.
func setup(c *cli.Context) error {
	if c.Bool("quiet") {
		env.log = logger.NewNoop()
	} else {
		env.log = logger.NewConsole(ports.ParseLogLevel(c.String("log-level")))
		env.bar = termprogress.New()
	}

	level, err := av.ParseNativeLogLevel(c.String("ffmpeg-log-level"))
	if err != nil {
		return err
	}
	av.SetNativeLogLevel(level)

	env.tok = progress.NewToken()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		env.log.Warn(l10n.T("Interrupted, shutting down..."))
		env.tok.Cancel()
	}()

	return nil
}

// openInput opens the command's positional input file.
func openInput(c *cli.Context) (*media.File, error) {
	path := c.Args().First()
	if path == "" {
		return nil, fmt.Errorf("%w: missing input file argument", media.ErrInvalidArgument)
	}
	return media.Open(path, media.WithLogger(env.log))
}

// selection builds the frame range from the shared selection flags.
// Flags a command does not define read as zero and fall through; with
// no selection flags at all the whole track is selected.
func selection(c *cli.Context, ext *frames.Extractor, f *media.File) (frames.Range, error) {
	if s := c.String("frames"); s != "" {
		return parseFrameList(s)
	}
	if step := c.Int64("step"); step > 0 {
		return frames.Stride{Step: step}, nil
	}
	if every := c.Float64("every"); every > 0 {
		return frames.TimeStride{Period: every}, nil
	}
	if c.IsSet("from") || c.IsSet("to") {
		span := frames.TimeSpan{Start: c.Float64("from"), End: c.Float64("to")}
		if !c.IsSet("to") {
			span.End = f.Duration()
		}
		return span, nil
	}
	return wholeTrack(ext, f)
}

// wholeTrack selects every frame, by count when the container records
// it and by duration otherwise.
func wholeTrack(ext *frames.Extractor, f *media.File) (frames.Range, error) {
	if n := ext.FrameCount(); n > 0 {
		return frames.Span{Start: 0, End: n - 1}, nil
	}
	if d := f.Duration(); d > 0 {
		return frames.TimeSpan{Start: 0, End: d}, nil
	}
	return nil, fmt.Errorf("%w: track length unknown, pass an explicit range", media.ErrInvalidArgument)
}

// parseFrameList parses a comma-separated frame number list such as
// "0,24,48".
func parseFrameList(s string) (frames.List, error) {
	var list frames.List
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid frame number %q", media.ErrInvalidArgument, part)
		}
		list = append(list, n)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: empty frame list", media.ErrInvalidArgument)
	}
	return list, nil
}
