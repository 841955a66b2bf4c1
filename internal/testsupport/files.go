package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleSubtitle = "1\n00:00:01,000 --> 00:00:02,500\nHello there.\n\n2\n00:00:03,000 --> 00:00:04,000\nGeneral Kenobi.\n"

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteSubtitle writes a small valid SRT file at path.
func WriteSubtitle(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(sampleSubtitle), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WritePair writes dir/name.srt and dir/name<mediaExt> and returns the
// subtitle path.
func WritePair(t testing.TB, dir, name, mediaExt string) string {
	t.Helper()
	subtitle := filepath.Join(dir, name+".srt")
	WriteSubtitle(t, subtitle)
	WriteFile(t, filepath.Join(dir, name+mediaExt), 1024)
	return subtitle
}
