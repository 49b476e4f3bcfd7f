package belt

import "context"

// limiter wraps a source, capping every emitted chunk at size bytes.
// Chunks longer than size are split: the head is emitted immediately
// and the tail buffered, drained (splitting again if still oversized)
// before the next upstream pull. Errors are forwarded verbatim in pull
// order and are not terminal for the limiter.
type limiter struct {
	size   int
	src    source
	buffer []byte
}

func newLimiter(src source, size int) *limiter {
	return &limiter{size: size, src: src}
}

func (l *limiter) pull(ctx context.Context) (Chunk, bool) {
	if l.buffer != nil {
		if len(l.buffer) > l.size {
			head := l.buffer[:l.size]
			l.buffer = l.buffer[l.size:]
			return Chunk{Data: head}, true
		}
		remaining := l.buffer
		l.buffer = nil
		return Chunk{Data: remaining}, true
	}

	c, ok := l.src.pull(ctx)
	if !ok {
		return Chunk{}, false
	}
	if c.Err != nil {
		return c, true
	}
	if len(c.Data) > l.size {
		head := c.Data[:l.size]
		l.buffer = c.Data[l.size:]
		return Chunk{Data: head}, true
	}
	return c, true
}
