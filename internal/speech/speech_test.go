package speech

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/autodub/autodub/internal/timeline"
)

// fakeSynthesizer writes the text itself as the clip content, failing
// on a chosen text.
type fakeSynthesizer struct {
	mu     sync.Mutex
	calls  int
	failOn string
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failOn != "" && text == f.failOn {
		return errors.New("synthesis refused")
	}
	return os.WriteFile(outputPath, []byte(text), 0644)
}

func (f *fakeSynthesizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testTimeline() *timeline.Timeline {
	return &timeline.Timeline{Segments: []timeline.Segment{
		{Index: 1, StartMS: 0, EndMS: 900, Text: "First line"},
		{Index: 2, StartMS: 1200, EndMS: 2000, Text: ""},
		{Index: 3, StartMS: 2500, EndMS: 3300, Text: "Third line"},
	}}
}

func TestRenderTimeline(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeSynthesizer{}

	clips, err := RenderTimeline(context.Background(), fake, testTimeline(), dir, 2)
	if err != nil {
		t.Fatalf("RenderTimeline returned error: %v", err)
	}

	if len(clips) != 2 {
		t.Fatalf("got %d clips, want 2 with the empty segment skipped", len(clips))
	}
	if clips[0].Index != 1 || clips[1].Index != 3 {
		t.Errorf("clip indices = %d, %d; want 1, 3", clips[0].Index, clips[1].Index)
	}
	if want := filepath.Join(dir, "0001.mp3"); clips[0].Path != want {
		t.Errorf("clips[0].Path = %q, want %q", clips[0].Path, want)
	}
	if clips[0].At != 0 {
		t.Errorf("clips[0].At = %v, want 0", clips[0].At)
	}
	if clips[1].At != 2500*time.Millisecond {
		t.Errorf("clips[1].At = %v, want 2.5s", clips[1].At)
	}
	for _, clip := range clips {
		if _, err := os.Stat(clip.Path); err != nil {
			t.Errorf("clip file missing: %v", err)
		}
	}
}

func TestRenderTimelineFailure(t *testing.T) {
	fake := &fakeSynthesizer{failOn: "Third line"}

	_, err := RenderTimeline(context.Background(), fake, testTimeline(), t.TempDir(), 2)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "segment 3") {
		t.Errorf("error = %v, want segment 3 failure", err)
	}
}

func TestRenderTimelineEmpty(t *testing.T) {
	fake := &fakeSynthesizer{}

	clips, err := RenderTimeline(context.Background(), fake, timeline.New(), t.TempDir(), 2)
	if err != nil {
		t.Fatalf("RenderTimeline returned error: %v", err)
	}
	if clips != nil {
		t.Errorf("got %d clips, want none", len(clips))
	}
	if got := fake.callCount(); got != 0 {
		t.Errorf("made %d synthesis calls, want 0", got)
	}
}

func TestRenderTimelineCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeSynthesizer{}
	if _, err := RenderTimeline(ctx, fake, testTimeline(), t.TempDir(), 2); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestFactoryReturnsOpenAISynthesizer(t *testing.T) {
	synth, err := Factory(ProviderOpenAI, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := synth.(*OpenAISynthesizer); !ok {
		t.Errorf("expected *OpenAISynthesizer, got %T", synth)
	}
}

func TestFactoryReturnsElevenLabsSynthesizer(t *testing.T) {
	synth, err := Factory(ProviderElevenLabs, "fake-key", Options{VoiceID: "v1"})
	if err != nil {
		t.Fatalf("Factory(ProviderElevenLabs) returned error: %v", err)
	}
	if _, ok := synth.(*ElevenLabsSynthesizer); !ok {
		t.Errorf("expected *ElevenLabsSynthesizer, got %T", synth)
	}
}

func TestFactoryElevenLabsRequiresVoiceID(t *testing.T) {
	if _, err := Factory(ProviderElevenLabs, "fake-key", Options{}); err == nil {
		t.Error("expected error for missing voice ID")
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	if _, err := Factory(ProviderOpenAI, "", Options{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	if _, err := Factory(Provider("festival"), "fake-key", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
