package testsupport

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path, including parent directories, holding size bytes of
// filler. Sizes below one are rounded up to one byte.
func WriteFile(t testing.TB, path string, size int) {
	t.Helper()
	writeBytes(t, path, bytes.Repeat([]byte{0x42}, max(size, 1)))
}

// WAV layout produced by the media stage: 16 kHz mono signed 16-bit PCM.
const (
	wavSampleRate    = 16000
	wavChannels      = 1
	wavBitsPerSample = 16
)

// WriteWAV writes a silent PCM WAV file lasting the given number of
// milliseconds and returns path.
func WriteWAV(t testing.TB, path string, millis int) string {
	t.Helper()
	blockAlign := wavChannels * wavBitsPerSample / 8
	dataSize := uint32(wavSampleRate * millis / 1000 * blockAlign)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	le := func(v any) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("encode wav header: %v", err)
		}
	}
	le(36 + dataSize)
	buf.WriteString("WAVEfmt ")
	le(uint32(16))
	le(uint16(1))
	le(uint16(wavChannels))
	le(uint32(wavSampleRate))
	le(uint32(wavSampleRate * blockAlign))
	le(uint16(blockAlign))
	le(uint16(wavBitsPerSample))
	buf.WriteString("data")
	le(dataSize)
	buf.Write(make([]byte, dataSize))

	writeBytes(t, path, buf.Bytes())
	return path
}

func writeBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
