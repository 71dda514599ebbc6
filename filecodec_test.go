package huffman

import (
	"os"
	"path/filepath"
	"testing"
)

func roundTripFile(t *testing.T, c *FileCodec, payload []byte) []byte {
	t.Helper()
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in")
	encPath := filepath.Join(dir, "enc")
	decPath := filepath.Join(dir, "dec")

	if err := os.WriteFile(inPath, payload, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := c.EncodeFile(inPath, encPath); err != nil {
		t.Fatalf("EncodeFile: %v", err)
	}
	if err := c.DecodeFile(encPath, decPath); err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}

	got, err := os.ReadFile(decPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(payload))
	}

	enc, err := os.ReadFile(encPath)
	if err != nil {
		t.Fatal(err)
	}
	return enc
}

func TestFileCodecEmptyInputProducesHeaderOnlyFile(t *testing.T) {
	c := &FileCodec{}
	enc := roundTripFile(t, c, nil)
	if len(enc) != HeaderSize {
		t.Fatalf("empty input: want %d-byte file, got %d", HeaderSize, len(enc))
	}
}

func TestFileCodecAllSameByteScenario(t *testing.T) {
	c := &FileCodec{}
	payload := make([]byte, 10000)
	for i := range payload {
		payload[i] = 42
	}
	enc := roundTripFile(t, c, payload)
	if len(enc) != HeaderSize+1250 {
		t.Fatalf("want %d-byte file, got %d", HeaderSize+1250, len(enc))
	}
}

func TestFileCodecAllSymbolsPresent(t *testing.T) {
	c := &FileCodec{}
	payload := make([]byte, 256*37)
	for i := range payload {
		payload[i] = byte(i % 256)
	}
	roundTripFile(t, c, payload)
}

func TestFileCodecWithCacheAndWorkers(t *testing.T) {
	c := &FileCodec{Cache: NewDictCache(8), Workers: 4}
	payload := []byte("the quick brown fox jumps over the lazy dog, repeated many times over. " +
		"the quick brown fox jumps over the lazy dog, repeated many times over.")
	roundTripFile(t, c, payload)
}

func TestFileCodecDecodeRejectsShortFile(t *testing.T) {
	c := &FileCodec{}
	dir := t.TempDir()
	badPath := filepath.Join(dir, "bad")
	if err := os.WriteFile(badPath, make([]byte, HeaderSize-1), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.DecodeFile(badPath, filepath.Join(dir, "out")); err == nil {
		t.Fatal("want error decoding a file shorter than HeaderSize")
	}
}

func TestFileCodecOverwritesExistingOutput(t *testing.T) {
	c := &FileCodec{}
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in")
	outPath := filepath.Join(dir, "out")

	if err := os.WriteFile(inPath, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(outPath, []byte("stale contents"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := c.EncodeFile(inPath, outPath); err != nil {
		t.Fatal(err)
	}

	decPath := filepath.Join(dir, "dec")
	if err := os.WriteFile(decPath, []byte("stale contents"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.DecodeFile(outPath, decPath); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(decPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q, want overwritten contents", got)
	}
}
