package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/minutes/internal/apperr"
	"github.com/nguyentantai21042004/minutes/internal/chunking"
	"github.com/nguyentantai21042004/minutes/internal/config"
	"github.com/nguyentantai21042004/minutes/internal/logger"
	"github.com/nguyentantai21042004/minutes/pkg/executor"
)

type call struct {
	name string
	args []string
}

type fakeExecutor struct {
	calls  []call
	stdout string
	err    error
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.stdout, f.err
}

func (f *fakeExecutor) LookPath(name string) (string, error) {
	return name, nil
}

func TestConvertArgs(t *testing.T) {
	exec := &fakeExecutor{}
	conv := NewFFmpeg("/opt/ffmpeg", exec, logger.Nop())
	out := filepath.Join(t.TempDir(), "run", "input_16k.wav")

	if err := conv.Convert(context.Background(), "meeting.m4a", out); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	got := strings.Join(exec.calls[0].args, " ")
	want := "-hide_banner -loglevel error -y -i meeting.m4a -ac 1 -ar 16000 -vn " + out
	if exec.calls[0].name != "/opt/ffmpeg" || got != want {
		t.Errorf("call = %s %s, want /opt/ffmpeg %s", exec.calls[0].name, got, want)
	}
}

func TestExtractArgs(t *testing.T) {
	exec := &fakeExecutor{}
	conv := NewFFmpeg("/opt/ffmpeg", exec, logger.Nop())
	out := filepath.Join(t.TempDir(), "chunk_0001.wav")

	if err := conv.Extract(context.Background(), "in.wav", out, 30, 60.5); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	got := strings.Join(exec.calls[0].args, " ")
	if !strings.Contains(got, "-ss 30.000 -to 60.500 -i in.wav") {
		t.Errorf("args = %s", got)
	}
}

func TestExtractRejectsEmptyRange(t *testing.T) {
	conv := NewFFmpeg("/opt/ffmpeg", &fakeExecutor{}, logger.Nop())
	err := conv.Extract(context.Background(), "in.wav", "out.wav", 5, 5)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("Extract() error = %v, want validation", err)
	}
}

func TestConvertFailureNamesCommand(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"missing executable", fmt.Errorf("%w: ffmpeg", executor.ErrNotFound)},
		{"non-zero exit", errors.New("command 'ffmpeg' failed: exit status 1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := NewFFmpeg("/custom/ffmpeg", &fakeExecutor{err: tt.err}, logger.Nop())
			err := conv.Convert(context.Background(), "a.mp3", filepath.Join(t.TempDir(), "b.wav"))
			if !apperr.IsKind(err, apperr.KindExternalTool) {
				t.Fatalf("Convert() error = %v, want external tool error", err)
			}
			if !strings.Contains(err.Error(), "/custom/ffmpeg") {
				t.Errorf("error %q should name the command", err)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	exec := &fakeExecutor{stdout: "ffmpeg version 7.0 Copyright\nbuilt with gcc\n"}
	got, err := NewFFmpeg("ffmpeg", exec, logger.Nop()).Version(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != "ffmpeg version 7.0 Copyright (command: ffmpeg)" {
		t.Errorf("Version() = %q", got)
	}
}

func TestResolveFFmpegCommand(t *testing.T) {
	if got := ResolveFFmpegCommand("/usr/local/bin/ffmpeg"); got != "/usr/local/bin/ffmpeg" {
		t.Errorf("ResolveFFmpegCommand() = %q", got)
	}
}

func TestSamplesToSpans(t *testing.T) {
	got := SamplesToSpans([]SampleRange{{Start: 32000, End: 48000}, {Start: 0, End: 8000}}, 16000)
	want := []chunking.TimeSpan{{Start: 2, End: 3}, {Start: 0, End: 0.5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SamplesToSpans() = %v, want %v", got, want)
	}
}

func toneWAV(t *testing.T, pattern []bool, secondsEach float64) string {
	t.Helper()
	var samples []int16
	per := int(secondsEach * SampleRate)
	for _, loud := range pattern {
		for i := 0; i < per; i++ {
			var v int16
			if loud {
				v = int16(8000 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
			}
			samples = append(samples, v)
		}
	}
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := WritePCM16(path, PCM{Samples: samples, SampleRate: SampleRate}); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEnergyVADDetect(t *testing.T) {
	path := toneWAV(t, []bool{false, true, false, true}, 0.96)
	vad := NewVAD(config.VADConfig{Engine: "energy", Threshold: 0.02, SamplingRate: SampleRate}, nil)

	spans, err := vad.Detect(context.Background(), path)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	want := []chunking.TimeSpan{{Start: 0.96, End: 1.92}, {Start: 2.88, End: 3.84}}
	if len(spans) != len(want) {
		t.Fatalf("Detect() = %v, want %v", spans, want)
	}
	for i := range want {
		if math.Abs(spans[i].Start-want[i].Start) > 1e-9 || math.Abs(spans[i].End-want[i].End) > 1e-9 {
			t.Errorf("span %d = %v, want %v", i, spans[i], want[i])
		}
	}
}

func TestEnergyVADSilence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "silence.wav")
	if err := WriteSilentWAV(path, 1); err != nil {
		t.Fatal(err)
	}
	spans, err := NewVAD(config.VADConfig{Engine: "energy", Threshold: 0.02}, nil).Detect(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(spans) != 0 {
		t.Errorf("Detect() = %v, want none", spans)
	}
}

func TestReadPCM16RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := WritePCM16(path, PCM{SampleRate: SampleRate}); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPCM16(path); err != nil {
		t.Errorf("empty data chunk should decode, got %v", err)
	}
	if _, err := ReadPCM16(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestCommandVAD(t *testing.T) {
	exec := &fakeExecutor{stdout: `[{"start": 16000, "end": 32000}, {"start": 0, "end": 4000}]`}
	vad := NewVAD(config.VADConfig{Engine: "command", Command: "python3 silero.py --threshold 0.5", SamplingRate: 16000}, exec)

	spans, err := vad.Detect(context.Background(), "/tmp/in.wav")
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	want := []chunking.TimeSpan{{Start: 1, End: 2}, {Start: 0, End: 0.25}}
	if !reflect.DeepEqual(spans, want) {
		t.Errorf("Detect() = %v, want %v", spans, want)
	}
	if exec.calls[0].name != "python3" || strings.Join(exec.calls[0].args, " ") != "silero.py --threshold 0.5 /tmp/in.wav" {
		t.Errorf("call = %+v", exec.calls[0])
	}
}

func TestCommandVADFailure(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("exit status 2")}
	vad := NewVAD(config.VADConfig{Engine: "command", Command: "vad-helper", SamplingRate: 16000}, exec)
	if _, err := vad.Detect(context.Background(), "in.wav"); !apperr.IsKind(err, apperr.KindExternalTool) {
		t.Errorf("Detect() error = %v, want external tool", err)
	}
}
