package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/autodub/autodub/internal/ffmpeg"
)

// chunkJob represents a single chunk to be created
type chunkJob struct {
	index        int
	startSeconds float64
	endSeconds   float64
	chunkPath    string
}

// planChunks lays out evenly sized cuts over the total duration. The
// last chunk absorbs the remainder.
func planChunks(audioPath, outputDir string, total, every time.Duration) []chunkJob {
	baseName := strings.TrimSuffix(
		filepath.Base(audioPath),
		filepath.Ext(audioPath),
	)
	ext := filepath.Ext(audioPath)

	chunkSeconds := every.Seconds()
	totalSeconds := total.Seconds()

	var jobs []chunkJob
	for i := 0; ; i++ {
		startSeconds := float64(i) * chunkSeconds
		if startSeconds >= totalSeconds {
			break
		}

		endSeconds := startSeconds + chunkSeconds
		if endSeconds > totalSeconds {
			endSeconds = totalSeconds
		}

		jobs = append(jobs, chunkJob{
			index:        i,
			startSeconds: startSeconds,
			endSeconds:   endSeconds,
			chunkPath: filepath.Join(
				outputDir,
				fmt.Sprintf("%s_chunk_%03d%s", baseName, i, ext),
			),
		})
	}
	return jobs
}

// Split cuts an audio file into chunks of the given duration.
func Split(
	ctx context.Context,
	audioPath string,
	every time.Duration,
	outputDir string,
) ([]Chunk, error) {
	return SplitConcurrent(ctx, audioPath, every, outputDir, 0)
}

// SplitConcurrent cuts an audio file into chunks with configurable
// concurrency. If concurrency is 0 or negative, it defaults to 10
// concurrent workers.
func SplitConcurrent(
	ctx context.Context,
	audioPath string,
	every time.Duration,
	outputDir string,
	concurrency int,
) ([]Chunk, error) {
	if every <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %v", every)
	}

	if concurrency <= 0 {
		concurrency = 10
	}

	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	totalDuration, err := Duration(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	jobs := planChunks(audioPath, outputDir, totalDuration, every)

	var (
		mu       sync.Mutex
		chunks   []Chunk
		firstErr error
		wg       sync.WaitGroup
	)

	// Semaphore to limit concurrent ffmpeg processes
	sem := make(chan struct{}, concurrency)

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		mu.Lock()
		hasErr := firstErr != nil
		mu.Unlock()
		if hasErr {
			break
		}

		wg.Add(1)
		go func(j chunkJob) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				return
			default:
			}

			mu.Lock()
			hasErr := firstErr != nil
			mu.Unlock()
			if hasErr {
				return
			}

			kwargs := ffmpeg.KwArgs{
				"ss": j.startSeconds,
				"t":  j.endSeconds - j.startSeconds,
				"y":  "",
				"c":  "copy", // Copy codec for speed
			}

			err := ffmpeg.Input(audioPath).
				Output(j.chunkPath, kwargs).
				OverWriteOutput().
				SetFfmpegPath(ffmpegPath).
				Run()

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf(
						"failed to create chunk %d: %w",
						j.index,
						err,
					)
				}
				return
			}

			chunks = append(chunks, Chunk{
				Path:  j.chunkPath,
				Index: j.index,
				Start: time.Duration(j.startSeconds * float64(time.Second)),
				End:   time.Duration(j.endSeconds * float64(time.Second)),
			})
		}(job)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	// sort chunks by index to maintain order
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Index < chunks[j].Index
	})

	return chunks, nil
}
