package belt

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// CompressionAlgorithm tags which codec a compression adapter uses.
// Zstd is the only member today; the type is open to extension.
type CompressionAlgorithm int

const (
	Zstd CompressionAlgorithm = iota
)

// NewEncodeReader wraps r with an encoding reader for algo: reading
// from the result yields compressed bytes of r's content.
func NewEncodeReader(r io.Reader, algo CompressionAlgorithm) (io.ReadCloser, error) {
	switch algo {
	case Zstd:
		return newZstdEncodeReader(r)
	default:
		return nil, fmt.Errorf("belt: unsupported compression algorithm %d", algo)
	}
}

// NewDecodeReader wraps r with a decoding reader for algo: reading from
// the result yields the decompressed bytes of r's (compressed) content.
func NewDecodeReader(r io.Reader, algo CompressionAlgorithm) (io.ReadCloser, error) {
	switch algo {
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("belt: build zstd decoder: %w", err)
		}
		return &zstdDecodeReader{dec: dec}, nil
	default:
		return nil, fmt.Errorf("belt: unsupported compression algorithm %d", algo)
	}
}

type zstdDecodeReader struct {
	dec *zstd.Decoder
}

func (z *zstdDecodeReader) Read(p []byte) (int, error) { return z.dec.Read(p) }
func (z *zstdDecodeReader) Close() error               { z.dec.Close(); return nil }

// zstdEncodeReader streams zstd-compressed output from an underlying
// io.Reader via an io.Pipe, since klauspost/compress/zstd's Encoder is
// a Writer, not a Reader.
type zstdEncodeReader struct {
	pr *io.PipeReader
}

func newZstdEncodeReader(r io.Reader) (io.ReadCloser, error) {
	pr, pw := io.Pipe()
	enc, err := zstd.NewWriter(pw)
	if err != nil {
		return nil, fmt.Errorf("belt: build zstd encoder: %w", err)
	}
	go func() {
		_, copyErr := io.Copy(enc, r)
		closeErr := enc.Close()
		err := copyErr
		if err == nil {
			err = closeErr
		}
		_ = pw.CloseWithError(err)
	}()
	return &zstdEncodeReader{pr: pr}, nil
}

func (z *zstdEncodeReader) Read(p []byte) (int, error) { return z.pr.Read(p) }
func (z *zstdEncodeReader) Close() error               { return z.pr.Close() }
