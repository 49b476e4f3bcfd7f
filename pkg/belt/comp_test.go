package belt

import (
	"bytes"
	"io"
	"testing"
)

func TestCompressionRoundtripZstd(t *testing.T) {
	original := []byte("hello world, this is some data compressed and decompressed via zstd")

	encoded, err := NewEncodeReader(bytes.NewReader(original), Zstd)
	if err != nil {
		t.Fatal(err)
	}
	compressed, err := io.ReadAll(encoded)
	if err != nil {
		t.Fatal(err)
	}
	_ = encoded.Close()

	if bytes.Equal(compressed, original) {
		t.Fatal("expected compressed output to differ from input")
	}

	decoded, err := NewDecodeReader(bytes.NewReader(compressed), Zstd)
	if err != nil {
		t.Fatal(err)
	}
	defer decoded.Close()

	roundtripped, err := io.ReadAll(decoded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(roundtripped, original) {
		t.Fatalf("got %q, want %q", roundtripped, original)
	}
}

func TestNewEncodeReaderRejectsUnknownAlgorithm(t *testing.T) {
	_, err := NewEncodeReader(bytes.NewReader(nil), CompressionAlgorithm(99))
	if err == nil {
		t.Fatal("expected unsupported algorithm to be rejected")
	}
}
