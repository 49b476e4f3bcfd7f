package belt

import (
	"io"
	"sync/atomic"
)

// Counter tracks the total number of bytes read through a
// CountedReader, as an atomic monotonic counter observers may read
// concurrently or after the reader is closed.
type Counter struct {
	n atomic.Uint64
}

// Current returns the number of bytes observed so far.
func (c *Counter) Current() uint64 { return c.n.Load() }

// CountedReader wraps an io.Reader transparently, updating its Counter
// after each successful read, before the bytes are handed to the
// caller.
type CountedReader struct {
	r       io.Reader
	counter *Counter
}

// NewCountedReader wraps r with a fresh Counter.
func NewCountedReader(r io.Reader) *CountedReader {
	return &CountedReader{r: r, counter: &Counter{}}
}

// Counter returns the side-channel counter tracking bytes read.
func (c *CountedReader) Counter() *Counter { return c.counter }

func (c *CountedReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.counter.n.Add(uint64(n))
	}
	return n, err
}
