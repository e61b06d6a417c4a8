package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/autodub/autodub/internal/ffmpeg"
)

// Dub tracks are rendered at CD-adjacent stereo settings so clips from
// any synthesis provider resample to a common base.
const (
	dubSampleRate    = 44100
	dubChannels      = 2
	dubChannelLayout = "stereo"
	dubBitrate       = "192k"
)

// TimedClip places a rendered audio file at an offset on the dub track.
type TimedClip struct {
	Path string
	At   time.Duration
}

// Silence writes a silent audio file of the given length.
func Silence(ctx context.Context, outputPath string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("silence duration must be positive, got %v", d)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	err = silenceSource(d).
		Output(outputPath, trackKwargs(outputPath)).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()

	if err != nil {
		return fmt.Errorf("silence generation failed: %w", err)
	}

	return nil
}

// OverlayAt mixes a clip into a base track at the given offset. The
// output keeps the base track's length.
func OverlayAt(
	ctx context.Context,
	basePath, clipPath, outputPath string,
	at time.Duration,
) error {
	if at < 0 {
		return fmt.Errorf("overlay offset must not be negative, got %v", at)
	}
	for _, path := range []string{basePath, clipPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", path)
		}
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	streams := []*ffmpeg.Stream{
		ffmpeg.Input(basePath),
		delayedClip(clipPath, at),
	}

	err = mixStreams(streams).
		Output(outputPath, trackKwargs(outputPath)).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()

	if err != nil {
		return fmt.Errorf("overlay failed: %w", err)
	}

	return nil
}

// Concat joins audio files back to back into one output.
func Concat(ctx context.Context, inputs []string, outputPath string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no inputs to concatenate")
	}
	for _, input := range inputs {
		if _, err := os.Stat(input); os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", input)
		}
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	streams := make([]*ffmpeg.Stream, len(inputs))
	for i, input := range inputs {
		streams[i] = ffmpeg.Input(input)
	}

	err = ffmpeg.Concat(streams, ffmpeg.KwArgs{"v": 0, "a": 1}).
		Output(outputPath, trackKwargs(outputPath)).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()

	if err != nil {
		return fmt.Errorf("concatenation failed: %w", err)
	}

	return nil
}

// Normalize levels an audio file with two-pass style loudnorm targets.
func Normalize(ctx context.Context, inputPath, outputPath string) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	err = ffmpeg.Input(inputPath).
		Filter("loudnorm", ffmpeg.Args{}, ffmpeg.KwArgs{
			"I":   -16,
			"TP":  -1.5,
			"LRA": 11,
		}).
		Output(outputPath, trackKwargs(outputPath)).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()

	if err != nil {
		return fmt.Errorf("normalization failed: %w", err)
	}

	return nil
}

// AssembleDub renders a complete dub track in one ffmpeg invocation: a
// silent base covering the whole program with every clip mixed in at
// its offset.
func AssembleDub(
	ctx context.Context,
	clips []TimedClip,
	total time.Duration,
	outputPath string,
) error {
	if total <= 0 {
		return fmt.Errorf("track duration must be positive, got %v", total)
	}
	if len(clips) == 0 {
		return Silence(ctx, outputPath, total)
	}
	for _, clip := range clips {
		if _, err := os.Stat(clip.Path); os.IsNotExist(err) {
			return fmt.Errorf("clip not found: %s", clip.Path)
		}
		if clip.At < 0 {
			return fmt.Errorf(
				"clip %s: offset must not be negative, got %v",
				filepath.Base(clip.Path),
				clip.At,
			)
		}
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	streams := make([]*ffmpeg.Stream, 0, len(clips)+1)
	streams = append(streams, silenceSource(total))
	for _, clip := range clips {
		streams = append(streams, delayedClip(clip.Path, clip.At))
	}

	err = mixStreams(streams).
		Output(outputPath, trackKwargs(outputPath)).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()

	if err != nil {
		return fmt.Errorf("dub assembly failed: %w", err)
	}

	return nil
}

// silenceSource builds a lavfi silent input of the given length.
func silenceSource(d time.Duration) *ffmpeg.Stream {
	src := fmt.Sprintf("anullsrc=r=%d:cl=%s", dubSampleRate, dubChannelLayout)
	return ffmpeg.Input(src, ffmpeg.KwArgs{
		"f": "lavfi",
		"t": d.Seconds(),
	})
}

// delayedClip shifts a clip right by its track offset. adelay with
// all=1 pads every channel.
func delayedClip(path string, at time.Duration) *ffmpeg.Stream {
	return ffmpeg.Input(path).Filter("adelay", ffmpeg.Args{}, ffmpeg.KwArgs{
		"delays": at.Milliseconds(),
		"all":    1,
	})
}

// mixStreams sums tracks without rescaling volume. The first stream
// sets the output length.
func mixStreams(streams []*ffmpeg.Stream) *ffmpeg.Stream {
	return ffmpeg.Filter(streams, "amix", ffmpeg.Args{}, ffmpeg.KwArgs{
		"inputs":    len(streams),
		"duration":  "first",
		"normalize": 0,
	})
}

// trackKwargs builds output encoder settings for a dub track file,
// picking the codec from the output extension.
func trackKwargs(outputPath string) ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"ar": dubSampleRate,
		"ac": dubChannels,
		"y":  "",
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(outputPath)), ".")
	applyCodec(kwargs, format, dubBitrate)
	return kwargs
}
