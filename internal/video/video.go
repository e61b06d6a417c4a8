// Package video handles the container-level work around a dub:
// pulling the original audio out, probing stream layout, and writing
// the finished video with the dubbed track and subtitles attached.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/autodub/autodub/internal/ffmpeg"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// defines interface for video processing operations
type Processor interface {
	// extracts audio from video file, returning the output path
	ExtractAudio(
		ctx context.Context,
		videoPath, outputPath string,
		opts ExtractAudioOptions,
	) (string, error)

	// retrieves video file information
	GetInfo(ctx context.Context, videoPath string) (*Info, error)

	// swaps the audio track, keeping the video stream untouched
	ReplaceAudio(
		ctx context.Context,
		videoPath, audioPath, outputPath string,
	) error

	// attaches a subtitle file as a soft subtitle stream
	MuxSubtitles(
		ctx context.Context,
		videoPath, subtitlePath, outputPath string,
	) error
}

// holds options for audio extraction
type ExtractAudioOptions struct {
	Format     string // Output format (wav, mp3, aac, flac)
	SampleRate int    // Sample rate in Hz (e.g., 16000, 44100, 48000)
	Channels   int    // Number of channels (1 = mono, 2 = stereo)
	Bitrate    string // Bitrate for lossy formats (e.g., "128k", "320k")
}

// returns sensible defaults for audio extraction
func DefaultExtractAudioOptions() ExtractAudioOptions {
	return ExtractAudioOptions{
		Format:     "wav",
		SampleRate: 44100,
		Channels:   2,
	}
}

// default implementation using ffmpeg
type DefaultProcessor struct {
	tempDir string
}

func NewProcessor(tempDir string) *DefaultProcessor {
	return &DefaultProcessor{
		tempDir: tempDir,
	}
}

// ExtractAudio pulls the audio track out of a video file. An empty
// outputPath derives one from the video name under the processor's
// temp dir.
func (p *DefaultProcessor) ExtractAudio(
	ctx context.Context,
	videoPath, outputPath string,
	opts ExtractAudioOptions,
) (string, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return "", fmt.Errorf("video file not found: %s", videoPath)
	}

	if outputPath == "" {
		dir := p.tempDir
		if dir == "" {
			dir = os.TempDir()
		}
		baseName := strings.TrimSuffix(
			filepath.Base(videoPath),
			filepath.Ext(videoPath),
		)
		ext := opts.Format
		if ext == "" {
			ext = "wav"
		}
		outputPath = filepath.Join(dir, baseName+"_audio."+ext)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs := ffmpeg.KwArgs{
		"vn": "",              // No video
		"ar": opts.SampleRate, // Sample rate
		"ac": opts.Channels,   // Channels
		"y":  "",              // Overwrite output
	}

	switch opts.Format {
	case "mp3":
		kwargs["acodec"] = "libmp3lame"
		if opts.Bitrate != "" {
			kwargs["b:a"] = opts.Bitrate
		}
	case "aac":
		kwargs["acodec"] = "aac"
		if opts.Bitrate != "" {
			kwargs["b:a"] = opts.Bitrate
		}
	case "flac":
		kwargs["acodec"] = "flac"
	case "wav":
		kwargs["acodec"] = "pcm_s16le"
	default:
		kwargs["acodec"] = "pcm_s16le"
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return "", err
	}

	err = ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()

	if err != nil {
		return "", fmt.Errorf("ffmpeg extraction failed: %w", err)
	}

	return outputPath, nil
}

// ffprobe stream and format fields we care about
type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

type ffprobeInfo struct {
	Streams []ffprobeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// GetInfo probes a video file for duration and stream layout.
func (p *DefaultProcessor) GetInfo(
	ctx context.Context,
	videoPath string,
) (*Info, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeInfo
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{Path: videoPath}

	if probe.Format.Duration != "" {
		var seconds float64
		if _, err := fmt.Sscanf(probe.Format.Duration, "%f", &seconds); err != nil {
			return nil, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			// first video stream wins
			if info.Codec == "" {
				info.Codec = stream.CodecName
				info.Width = stream.Width
				info.Height = stream.Height
				info.FrameRate = parseFrameRate(stream.AvgFrameRate)
			}
		case "audio":
			info.HasAudio = true
		}
	}

	return info, nil
}

// parseFrameRate converts ffprobe's rational rate ("30000/1001") to a
// float. Malformed values come back as 0.
func parseFrameRate(s string) float64 {
	if s == "" || s == "0/0" {
		return 0
	}
	num, den, found := strings.Cut(s, "/")
	if !found {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// ReplaceAudio writes a copy of the video with its audio track swapped
// for the given file. The video stream is not re-encoded.
func (p *DefaultProcessor) ReplaceAudio(
	ctx context.Context,
	videoPath, audioPath, outputPath string,
) error {
	for _, path := range []string{videoPath, audioPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", path)
		}
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	videoIn := ffmpeg.Input(videoPath)
	audioIn := ffmpeg.Input(audioPath)

	err = ffmpeg.Output(
		[]*ffmpeg.Stream{videoIn.Video(), audioIn.Audio()},
		outputPath,
		ffmpeg.KwArgs{
			"c:v":      "copy",
			"c:a":      "aac",
			"b:a":      "192k",
			"shortest": "",
			"y":        "",
		},
	).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()

	if err != nil {
		return fmt.Errorf("audio replacement failed: %w", err)
	}

	return nil
}

// MuxSubtitles attaches a subtitle file as a selectable soft subtitle
// stream without re-encoding audio or video.
func (p *DefaultProcessor) MuxSubtitles(
	ctx context.Context,
	videoPath, subtitlePath, outputPath string,
) error {
	for _, path := range []string{videoPath, subtitlePath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", path)
		}
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	// mp4 containers need mov_text; mkv carries srt directly
	subCodec := "mov_text"
	if ext := strings.ToLower(filepath.Ext(outputPath)); ext == ".mkv" {
		subCodec = "srt"
	}

	videoIn := ffmpeg.Input(videoPath)
	subIn := ffmpeg.Input(subtitlePath)

	err = ffmpeg.Output(
		[]*ffmpeg.Stream{videoIn, subIn},
		outputPath,
		ffmpeg.KwArgs{
			"c":   "copy",
			"c:s": subCodec,
			"y":   "",
		},
	).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()

	if err != nil {
		return fmt.Errorf("subtitle muxing failed: %w", err)
	}

	return nil
}
