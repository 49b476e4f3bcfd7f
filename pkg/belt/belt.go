// Package belt implements the byte-streaming pipeline the metadata
// plane's ingress path is built on: a finite, lazy, single-consumer
// sequence of byte chunks (Belt), an optional chunk-size cap (Limiter),
// a counted io.Reader side channel, and a Zstd compression adapter.
package belt

import (
	"context"
	"errors"
	"io"
)

// Chunk is one pulled unit from a Belt: either Data or an Err.
// A Chunk with Err set is not terminal for the Belt itself — pulling
// again may still yield further chunks, matching the limiter's
// forward-and-continue error semantics.
type Chunk struct {
	Data []byte
	Err  error
}

// source is the low-level pull primitive a Belt is built from.
type source interface {
	pull(ctx context.Context) (Chunk, bool)
}

// channelSource pulls from a producer/consumer channel; the channel's
// close signals end of stream.
type channelSource struct {
	ch <-chan Chunk
}

func (s *channelSource) pull(ctx context.Context) (Chunk, bool) {
	select {
	case c, ok := <-s.ch:
		if !ok {
			return Chunk{}, false
		}
		return c, true
	case <-ctx.Done():
		return Chunk{Err: ctx.Err()}, true
	}
}

// readerSource treats an arbitrary io.Reader as a pull source, the
// erased-stream case (an upstream io.Reader the core doesn't own).
type readerSource struct {
	r       io.Reader
	bufSize int
	done    bool
}

func (s *readerSource) pull(ctx context.Context) (Chunk, bool) {
	if s.done {
		return Chunk{}, false
	}
	buf := make([]byte, s.bufSize)
	n, err := s.r.Read(buf)
	if n > 0 {
		chunk := Chunk{Data: buf[:n]}
		if err != nil && !errors.Is(err, io.EOF) {
			s.done = true
			return Chunk{Err: err}, true
		}
		if err != nil {
			s.done = true
		}
		return chunk, true
	}
	s.done = true
	if err != nil && !errors.Is(err, io.EOF) {
		return Chunk{Err: err}, true
	}
	return Chunk{}, false
}

// Belt is a finite, lazy, single-consumer sequence of byte chunks,
// optionally size-capped by a Limiter. It is restartable only if its
// underlying source is restartable; nothing here assumes that.
type Belt struct {
	src     source
	limiter *limiter
}

const defaultReadBufSize = 32 * 1024

// FromChannel builds a Belt pulling from an existing channel of chunks.
// A positive chunkLimit caps every emitted chunk's length; larger
// chunks are split and their tail buffered for subsequent pulls.
func FromChannel(ch <-chan Chunk, chunkLimit int) *Belt {
	return wrap(&channelSource{ch: ch}, chunkLimit)
}

// FromReader builds a Belt pulling from an arbitrary io.Reader in
// readBufSize increments (defaulting to 32KiB when non-positive).
func FromReader(r io.Reader, readBufSize, chunkLimit int) *Belt {
	if readBufSize <= 0 {
		readBufSize = defaultReadBufSize
	}
	return wrap(&readerSource{r: r, bufSize: readBufSize}, chunkLimit)
}

func wrap(s source, chunkLimit int) *Belt {
	if chunkLimit > 0 {
		return &Belt{limiter: newLimiter(s, chunkLimit)}
	}
	return &Belt{src: s}
}

// Channel creates a bounded channel pair and the Belt reading from it:
// the producer sends Chunks on the returned channel, closing it to
// signal end of stream.
func Channel(bufferSize, chunkLimit int) (chan<- Chunk, *Belt) {
	ch := make(chan Chunk, bufferSize)
	return ch, FromChannel(ch, chunkLimit)
}

// Pull draws the next chunk: (data, nil, true) for a buffer, (nil, err,
// true) for a forwarded error (not terminal — callers may pull again),
// or (nil, nil, false) at end of stream.
func (b *Belt) Pull(ctx context.Context) ([]byte, error, bool) {
	var (
		c  Chunk
		ok bool
	)
	if b.limiter != nil {
		c, ok = b.limiter.pull(ctx)
	} else {
		c, ok = b.src.pull(ctx)
	}
	if !ok {
		return nil, nil, false
	}
	return c.Data, c.Err, true
}

// Reader adapts the Belt into an in-order io.Reader over its pulled
// chunks. A chunk's error surfaces from Read once any bytes already
// buffered from a prior successful pull are exhausted, so a caller
// reading to completion (io.ReadAll, io.Copy) still observes every byte
// pulled before the error.
func (b *Belt) Reader() io.Reader { return &beltReader{belt: b} }

type beltReader struct {
	belt *Belt
	buf  []byte
}

func (r *beltReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		data, err, ok := r.belt.Pull(context.Background())
		if !ok {
			return 0, io.EOF
		}
		if err != nil {
			return 0, err
		}
		r.buf = data
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
