package main

import (
	"fmt"
	"sort"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/unbundle/pkg/frames"
	"github.com/user/unbundle/pkg/media"
	"github.com/user/unbundle/pkg/probe"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     l10n.T("Show container and stream metadata"),
		ArgsUsage: "<input>",
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			printMetadata(f.Metadata())
			return nil
		},
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     l10n.T("Probe a file without decoding"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "fast",
				Usage: l10n.T("Read MP4 box structure only, without the FFmpeg libraries"),
			},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("%w: missing input file argument", media.ErrInvalidArgument)
			}

			if c.Bool("fast") {
				info, err := probe.ProbeMP4(path)
				if err != nil {
					return err
				}
				printMP4Info(info)
				return nil
			}

			m, err := probe.Probe(path, media.WithLogger(env.log))
			if err != nil {
				return err
			}
			printMetadata(m)
			return nil
		},
	}
}

func printMetadata(m *media.Metadata) {
	fmt.Println(l10n.F("Format:   %s (%s)", m.FormatName, m.FormatLongName))
	fmt.Println(l10n.F("Duration: %.3fs", m.Duration))
	if m.BitRate > 0 {
		fmt.Println(l10n.F("Bit rate: %d kb/s", m.BitRate/1000))
	}
	fmt.Println(l10n.F("Streams:  %d", m.StreamCount))

	for _, v := range m.VideoTracks {
		fmt.Println(l10n.F("  video #%d: %s %dx%d %.3f fps pix=%s frames=%d",
			v.TrackIndex, v.Codec, v.Width, v.Height, v.FrameRate, v.PixelFormat, v.FrameCount))
	}
	for _, a := range m.AudioTracks {
		line := l10n.F("  audio #%d: %s %d Hz %dch layout=%s",
			a.TrackIndex, a.Codec, a.SampleRate, a.Channels, a.ChannelLayout)
		if a.Language != "" {
			line += l10n.F(" lang=%s", a.Language)
		}
		fmt.Println(line)
	}
	for _, s := range m.SubtitleTracks {
		line := l10n.F("  subtitle #%d: %s", s.TrackIndex, s.Codec)
		if s.Language != "" {
			line += l10n.F(" lang=%s", s.Language)
		}
		fmt.Println(line)
	}

	if len(m.Tags) > 0 {
		fmt.Println(l10n.T("Tags:"))
		keys := make([]string, 0, len(m.Tags))
		for k := range m.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s=%s\n", k, m.Tags[k])
		}
	}
}

func printMP4Info(info *probe.MP4Info) {
	fmt.Println(l10n.F("Major brand: %s", info.MajorBrand))
	if len(info.CompatibleBrands) > 0 {
		fmt.Println(l10n.F("Compatible:  %v", info.CompatibleBrands))
	}
	if info.Fragmented {
		fmt.Println(l10n.T("Fragmented:  yes"))
	}
	if info.Duration > 0 {
		fmt.Println(l10n.F("Duration:    %.3fs", info.Duration))
	}
	for _, trk := range info.Tracks {
		line := l10n.F("  track %d: %s %s", trk.ID, trk.Kind, trk.Codec)
		if trk.Width > 0 && trk.Height > 0 {
			line += fmt.Sprintf(" %dx%d", trk.Width, trk.Height)
		}
		line += l10n.F(" timescale=%d", trk.Timescale)
		fmt.Println(line)
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     l10n.T("Check a file for structural problems"),
		ArgsUsage: "<input>",
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			rep := f.Validate()
			for _, msg := range rep.Errors {
				fmt.Println(l10n.F("error:   %s", msg))
			}
			for _, msg := range rep.Warnings {
				fmt.Println(l10n.F("warning: %s", msg))
			}
			for _, msg := range rep.Info {
				fmt.Println(l10n.F("info:    %s", msg))
			}

			if !rep.Valid() {
				return fmt.Errorf("%w: %d validation errors in %s", media.ErrInvalidInput, len(rep.Errors), f.Path())
			}
			env.log.Info(l10n.F("%s is valid", f.Path()))
			return nil
		},
	}
}

func keyframesCommand() *cli.Command {
	return &cli.Command{
		Name:      "keyframes",
		Usage:     l10n.T("List keyframes and GOP statistics of a video track"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			trackFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: l10n.T("Maximum keyframes to list (0 = all)"),
			},
		},
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			rep, err := f.AnalyzeKeyframes(c.Int("track"))
			if err != nil {
				return err
			}

			fmt.Println(l10n.F("%d keyframes in %d packets", len(rep.Keyframes), rep.PacketCount))
			if len(rep.Keyframes) > 1 {
				fmt.Println(l10n.F("GOP interval: avg %.2fs, min %.2fs, max %.2fs",
					rep.AverageInterval, rep.MinInterval, rep.MaxInterval))
			}

			list := rep.Keyframes
			limit := c.Int("limit")
			if limit > 0 && len(list) > limit {
				list = list[:limit]
			}
			for _, kf := range list {
				fmt.Printf("  #%-8d pts=%-12d t=%.3fs\n", kf.FrameNumber, kf.PTS, kf.TimeSeconds)
			}
			if n := len(rep.Keyframes) - len(list); n > 0 {
				fmt.Println(l10n.F("  ... and %d more", n))
			}
			return nil
		},
	}
}

func timingCommand() *cli.Command {
	return &cli.Command{
		Name:      "timing",
		Usage:     l10n.T("Classify a video track as constant or variable frame rate"),
		ArgsUsage: "<input>",
		Flags:     []cli.Flag{trackFlag()},
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			rep, err := f.AnalyzeTiming(c.Int("track"))
			if err != nil {
				return err
			}

			if rep.IsVariable {
				fmt.Println(l10n.T("Frame rate: variable"))
			} else {
				fmt.Println(l10n.T("Frame rate: constant"))
			}
			fmt.Println(l10n.F("Nominal FPS:  %.3f", rep.NominalFPS))
			fmt.Println(l10n.F("Measured FPS: %.3f", rep.MeasuredFPS))
			fmt.Println(l10n.F("Mean interval %.4fs, stddev %.4fs over %d samples",
				rep.MeanInterval, rep.StdDev, rep.SampleCount))
			return nil
		},
	}
}

func scenesCommand() *cli.Command {
	return &cli.Command{
		Name:      "scenes",
		Usage:     l10n.T("Detect scene changes in a video track"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			trackFlag(),
			&cli.Float64Flag{
				Name:  "threshold",
				Value: frames.DefaultSceneThreshold,
				Usage: l10n.T("Minimum luma difference score (0-100) treated as a cut"),
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

			opts := frames.DefaultSceneOptions()
			opts.Threshold = c.Float64("threshold")
			opts.Progress = env.sink()
			opts.BatchSize = progressBatch
			opts.Token = env.tok

			changes, err := ext.DetectScenes(opts)
			if err != nil {
				return err
			}

			fmt.Println(l10n.F("%d scene changes (threshold %.1f)", len(changes), opts.Threshold))
			for _, sc := range changes {
				fmt.Printf("  #%-8d t=%8.3fs score=%5.1f\n", sc.FrameNumber, sc.TimeSeconds, sc.Score)
			}
			return nil
		},
	}
}

func packetsCommand() *cli.Command {
	return &cli.Command{
		Name:      "packets",
		Usage:     l10n.T("Dump packet timing without decoding"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "stream",
				Aliases: []string{"s"},
				Value:   -1,
				Usage:   l10n.T("Stream index to dump (-1 = all)"),
			},
			&cli.IntFlag{
				Name:  "limit",
				Value: 50,
				Usage: l10n.T("Maximum packets to list (0 = all)"),
			},
			&cli.BoolFlag{
				Name:  "keyframes",
				Usage: l10n.T("List only keyframe packets"),
			},
		},
		Action: func(c *cli.Context) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			limit := c.Int("limit")
			keyOnly := c.Bool("keyframes")

			fmt.Println(l10n.T("stream          pts          dts     size       time  key"))
			n := 0
			err = f.Packets(c.Int("stream"), func(p media.PacketInfo) bool {
				if keyOnly && !p.Keyframe {
					return true
				}
				flag := " "
				if p.Keyframe {
					flag = "K"
				}
				fmt.Printf("%6d %12d %12d %8d %9.3fs    %s\n",
					p.StreamIndex, p.PTS, p.DTS, p.Size, p.TimeSeconds, flag)
				n++
				return limit == 0 || n < limit
			})
			if err != nil {
				return err
			}
			if limit > 0 && n == limit {
				fmt.Println(l10n.T("  ... truncated, raise --limit for more"))
			}
			return nil
		},
	}
}

// trackFlag is the track selector shared by the track-scoped commands.
func trackFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "track",
		Aliases: []string{"t"},
		Value:   0,
		Usage:   l10n.T("Track index among streams of the same kind (0 = first)"),
	}
}
