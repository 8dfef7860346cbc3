package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/nguyentantai21042004/minutes/internal/apperr"
	"github.com/nguyentantai21042004/minutes/internal/chunking"
	"github.com/nguyentantai21042004/minutes/internal/config"
	"github.com/nguyentantai21042004/minutes/pkg/executor"
)

// frameMillis is the analysis window of the energy detector.
const frameMillis = 30

// NewVAD builds the detector selected by vad.engine.
func NewVAD(cfg config.VADConfig, exec executor.Executor) VAD {
	if cfg.Engine == "command" {
		return &commandVAD{
			command:      cfg.Command,
			samplingRate: cfg.SamplingRate,
			executor:     exec,
		}
	}
	return &energyVAD{threshold: cfg.Threshold}
}

// energyVAD marks 30 ms frames whose RMS level reaches the threshold
// (relative to full scale) as speech.
type energyVAD struct {
	threshold float64
}

func (v *energyVAD) Detect(ctx context.Context, wavPath string) ([]chunking.TimeSpan, error) {
	pcm, err := ReadPCM16(wavPath)
	if err != nil {
		return nil, fmt.Errorf("energy vad: %w", err)
	}
	return SamplesToSpans(v.detectSamples(pcm), pcm.SampleRate), nil
}

func (v *energyVAD) detectSamples(pcm PCM) []SampleRange {
	frame := pcm.SampleRate * frameMillis / 1000
	if frame <= 0 {
		return nil
	}

	var ranges []SampleRange
	inSpeech := false
	var start int64
	for off := 0; off < len(pcm.Samples); off += frame {
		end := off + frame
		if end > len(pcm.Samples) {
			end = len(pcm.Samples)
		}
		speech := rms(pcm.Samples[off:end]) >= v.threshold
		switch {
		case speech && !inSpeech:
			inSpeech = true
			start = int64(off)
		case !speech && inSpeech:
			inSpeech = false
			ranges = append(ranges, SampleRange{Start: start, End: int64(off)})
		}
	}
	if inSpeech {
		ranges = append(ranges, SampleRange{Start: start, End: int64(len(pcm.Samples))})
	}
	return ranges
}

func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		f := float64(s) / 32768.0
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// commandVAD runs an external detector that prints Silero-style timestamps:
// a JSON array of {"start": sample, "end": sample}.
type commandVAD struct {
	command      string
	samplingRate int
	executor     executor.Executor
}

func (v *commandVAD) Detect(ctx context.Context, wavPath string) ([]chunking.TimeSpan, error) {
	fields := strings.Fields(v.command)
	if len(fields) == 0 {
		return nil, apperr.Precondition("vad.command is empty")
	}
	args := append(fields[1:], wavPath)

	out, err := v.executor.Execute(ctx, fields[0], args...)
	if err != nil {
		return nil, apperr.ExternalTool(v.command, err)
	}

	var ranges []SampleRange
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &ranges); err != nil {
		return nil, fmt.Errorf("parse vad output: %w", err)
	}
	return SamplesToSpans(ranges, v.samplingRate), nil
}
