package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Format of the PCM produced by the speech model
const (
	Channels      = 1
	SampleRate    = 24000
	BitsPerSample = 16
)

const wavHeaderSize = 44

// PCMFormat describes linear PCM samples
type PCMFormat struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
}

// SpeechFormat is mono 24 kHz 16-bit PCM
var SpeechFormat = PCMFormat{Channels: Channels, SampleRate: SampleRate, BitsPerSample: BitsPerSample}

// EncodeWAV wraps raw little-endian PCM samples in a RIFF/WAVE container
func EncodeWAV(pcm []byte, f PCMFormat) ([]byte, error) {
	if f.Channels <= 0 || f.SampleRate <= 0 || f.BitsPerSample <= 0 || f.BitsPerSample%8 != 0 {
		return nil, fmt.Errorf("invalid pcm format %+v", f)
	}
	blockAlign := f.Channels * f.BitsPerSample / 8
	// drop a trailing partial frame
	pcm = pcm[:len(pcm)-len(pcm)%blockAlign]

	var buf bytes.Buffer
	buf.Grow(wavHeaderSize + len(pcm))

	le := binary.LittleEndian
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, le, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, le, uint32(16)) // fmt chunk size
	_ = binary.Write(&buf, le, uint16(1))  // linear PCM
	_ = binary.Write(&buf, le, uint16(f.Channels))
	_ = binary.Write(&buf, le, uint32(f.SampleRate))
	_ = binary.Write(&buf, le, uint32(f.SampleRate*blockAlign)) // byte rate
	_ = binary.Write(&buf, le, uint16(blockAlign))
	_ = binary.Write(&buf, le, uint16(f.BitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(&buf, le, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes(), nil
}
