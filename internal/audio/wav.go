package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrUnsupportedWAV is returned for anything other than uncompressed 16-bit PCM.
var ErrUnsupportedWAV = errors.New("unsupported wav format")

// PCM holds decoded mono samples.
type PCM struct {
	Samples    []int16
	SampleRate int
}

// ReadPCM16 decodes a 16-bit PCM WAV file. Multi-channel audio is downmixed.
func ReadPCM16(path string) (PCM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PCM{}, fmt.Errorf("read wav: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return PCM{}, fmt.Errorf("%w: missing RIFF/WAVE header", ErrUnsupportedWAV)
	}

	var (
		channels   uint16
		sampleRate uint32
		bits       uint16
		format     uint16
		haveFmt    bool
	)
	r := bytes.NewReader(data[12:])
	for {
		var id [4]byte
		var size uint32
		if _, err := io.ReadFull(r, id[:]); err != nil {
			break
		}
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			break
		}

		switch string(id[:]) {
		case "fmt ":
			chunk := make([]byte, size)
			if _, err := io.ReadFull(r, chunk); err != nil {
				return PCM{}, fmt.Errorf("%w: short fmt chunk", ErrUnsupportedWAV)
			}
			if size < 16 {
				return PCM{}, fmt.Errorf("%w: fmt chunk too small", ErrUnsupportedWAV)
			}
			format = binary.LittleEndian.Uint16(chunk[0:2])
			channels = binary.LittleEndian.Uint16(chunk[2:4])
			sampleRate = binary.LittleEndian.Uint32(chunk[4:8])
			bits = binary.LittleEndian.Uint16(chunk[14:16])
			haveFmt = true
		case "data":
			if !haveFmt {
				return PCM{}, fmt.Errorf("%w: data before fmt", ErrUnsupportedWAV)
			}
			if format != 1 || bits != 16 || channels == 0 {
				return PCM{}, fmt.Errorf("%w: format=%d bits=%d channels=%d", ErrUnsupportedWAV, format, bits, channels)
			}
			chunk := make([]byte, size)
			n, _ := io.ReadFull(r, chunk)
			return PCM{
				Samples:    downmix(chunk[:n], int(channels)),
				SampleRate: int(sampleRate),
			}, nil
		default:
			if _, err := r.Seek(int64(size+size%2), io.SeekCurrent); err != nil {
				return PCM{}, fmt.Errorf("%w: skip chunk", ErrUnsupportedWAV)
			}
		}
	}
	return PCM{}, fmt.Errorf("%w: no data chunk", ErrUnsupportedWAV)
}

func downmix(raw []byte, channels int) []int16 {
	frames := len(raw) / (2 * channels)
	out := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var sum int32
		for c := 0; c < channels; c++ {
			off := (i*channels + c) * 2
			sum += int32(int16(binary.LittleEndian.Uint16(raw[off : off+2])))
		}
		out[i] = int16(sum / int32(channels))
	}
	return out
}

// WritePCM16 writes mono 16-bit PCM samples as a WAV file.
func WritePCM16(path string, pcm PCM) error {
	dataSize := uint32(len(pcm.Samples) * 2)
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(pcm.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(pcm.SampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	binary.Write(&buf, binary.LittleEndian, pcm.Samples)

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

// WriteSilentWAV writes seconds of silence at the normalized sample rate.
func WriteSilentWAV(path string, seconds float64) error {
	return WritePCM16(path, PCM{
		Samples:    make([]int16, int(seconds*SampleRate)),
		SampleRate: SampleRate,
	})
}
