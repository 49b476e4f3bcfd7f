package belt

import (
	"context"
	"errors"
	"testing"
)

type sliceSource struct {
	chunks []Chunk
	i      int
}

func (s *sliceSource) pull(ctx context.Context) (Chunk, bool) {
	if s.i >= len(s.chunks) {
		return Chunk{}, false
	}
	c := s.chunks[s.i]
	s.i++
	return c, true
}

func TestLimiterBasic(t *testing.T) {
	src := &sliceSource{chunks: []Chunk{
		{Data: []byte("hello")},
		{Data: []byte("world")},
		{Data: []byte("!")},
	}}
	l := newLimiter(src, 5)
	ctx := context.Background()

	want := []string{"hello", "world", "!"}
	for _, w := range want {
		c, ok := l.pull(ctx)
		if !ok || c.Err != nil || string(c.Data) != w {
			t.Fatalf("got (%q, %v, %v), want %q", c.Data, c.Err, ok, w)
		}
	}
	if _, ok := l.pull(ctx); ok {
		t.Fatal("expected end of stream")
	}
}

func TestLimiterSplitLargeChunks(t *testing.T) {
	src := &sliceSource{chunks: []Chunk{{Data: []byte("abcdefghijklmnopqrstuvwxyz")}}}
	l := newLimiter(src, 5)
	ctx := context.Background()

	want := []string{"abcde", "fghij", "klmno", "pqrst", "uvwxy", "z"}
	for _, w := range want {
		c, ok := l.pull(ctx)
		if !ok || c.Err != nil || string(c.Data) != w {
			t.Fatalf("got (%q, %v, %v), want %q", c.Data, c.Err, ok, w)
		}
	}
	if _, ok := l.pull(ctx); ok {
		t.Fatal("expected end of stream")
	}
}

func TestLimiterEmptyInput(t *testing.T) {
	l := newLimiter(&sliceSource{}, 5)
	if _, ok := l.pull(context.Background()); ok {
		t.Fatal("expected no chunks")
	}
}

func TestLimiterErrorPropagation(t *testing.T) {
	src := &sliceSource{chunks: []Chunk{
		{Data: []byte("hello")},
		{Err: errors.New("test error")},
		{Data: []byte("world")},
	}}
	l := newLimiter(src, 5)
	ctx := context.Background()

	c, ok := l.pull(ctx)
	if !ok || c.Err != nil || string(c.Data) != "hello" {
		t.Fatalf("got (%q, %v, %v)", c.Data, c.Err, ok)
	}

	c, ok = l.pull(ctx)
	if !ok || c.Err == nil {
		t.Fatalf("expected error chunk, got (%q, %v, %v)", c.Data, c.Err, ok)
	}

	c, ok = l.pull(ctx)
	if !ok || c.Err != nil || string(c.Data) != "world" {
		t.Fatalf("got (%q, %v, %v)", c.Data, c.Err, ok)
	}

	if _, ok := l.pull(ctx); ok {
		t.Fatal("expected end of stream")
	}
}

func TestLimiterChunkBoundary(t *testing.T) {
	src := &sliceSource{chunks: []Chunk{
		{Data: []byte("12345")},
		{Data: []byte("67890")},
	}}
	l := newLimiter(src, 5)
	ctx := context.Background()

	c, ok := l.pull(ctx)
	if !ok || string(c.Data) != "12345" {
		t.Fatalf("got %q", c.Data)
	}
	c, ok = l.pull(ctx)
	if !ok || string(c.Data) != "67890" {
		t.Fatalf("got %q", c.Data)
	}
	if _, ok := l.pull(ctx); ok {
		t.Fatal("expected end of stream")
	}
}
