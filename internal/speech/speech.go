// Package speech renders subtitle segments as spoken audio clips
// through text-to-speech providers. One clip is produced per segment,
// named by the segment's index, so a dub track can later place each
// clip at its segment's start time.
package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/autodub/autodub/internal/timeline"
)

// Synthesizer converts one text into an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

// Provider identifies a text-to-speech backend.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderElevenLabs Provider = "elevenlabs"
)

// Options configures synthesis across providers.
type Options struct {
	// Model overrides the provider default.
	Model string

	// Voice selects the OpenAI voice. Empty means alloy.
	Voice string

	// VoiceID selects the ElevenLabs voice. Required for ElevenLabs.
	VoiceID string
}

// Factory creates a Synthesizer for the given provider.
func Factory(provider Provider, apiKey string, opts Options) (Synthesizer, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAISynthesizer(apiKey, opts)
	case ProviderElevenLabs:
		return NewElevenLabsSynthesizer(apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported speech provider: %s", provider)
	}
}

// Clip is one rendered segment.
type Clip struct {
	// Index is the segment index the clip was rendered from.
	Index int
	// Path is the rendered audio file.
	Path string
	// At is the segment's start offset in the source media.
	At time.Duration
}

type renderJob struct {
	index int
	text  string
	path  string
	at    time.Duration
}

// RenderTimeline synthesizes one clip per segment into dir, named
// %04d.mp3 by segment index. Segments with empty text get no clip.
// Clips come back ordered by segment index. The first synthesis
// failure cancels the remaining work.
func RenderTimeline(ctx context.Context, s Synthesizer, tl *timeline.Timeline, dir string, concurrency int) ([]Clip, error) {
	if concurrency <= 0 {
		concurrency = 3
	}

	var jobs []renderJob
	for _, seg := range tl.Segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		jobs = append(jobs, renderJob{
			index: seg.Index,
			text:  seg.Text,
			path:  filepath.Join(dir, fmt.Sprintf("%04d.mp3", seg.Index)),
			at:    time.Duration(seg.StartMS) * time.Millisecond,
		})
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create clip directory: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		clips    []Clip
		firstErr error
		wg       sync.WaitGroup
	)

	// Semaphore to limit concurrent synthesis requests
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
		go func(j renderJob) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				return
			default:
			}

			err := s.Synthesize(ctx, j.text, j.path)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("segment %d failed: %w", j.index, err)
				}
				cancel()
				return
			}

			clips = append(clips, Clip{Index: j.index, Path: j.path, At: j.at})
		}(job)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// sort clips by segment index to maintain order
	sort.Slice(clips, func(i, j int) bool {
		return clips[i].Index < clips[j].Index
	})

	return clips, nil
}
