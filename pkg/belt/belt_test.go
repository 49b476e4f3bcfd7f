package belt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestBeltChannel(t *testing.T) {
	ch, belt := Channel(10, 0)

	ch <- Chunk{Data: []byte("hello")}
	ch <- Chunk{Data: []byte(" world")}
	close(ch)

	ctx := context.Background()
	data, err, ok := belt.Pull(ctx)
	if err != nil || !ok || string(data) != "hello" {
		t.Fatalf("got (%q, %v, %v), want (hello, nil, true)", data, err, ok)
	}
	data, err, ok = belt.Pull(ctx)
	if err != nil || !ok || string(data) != " world" {
		t.Fatalf("got (%q, %v, %v), want ( world, nil, true)", data, err, ok)
	}
	_, _, ok = belt.Pull(ctx)
	if ok {
		t.Fatal("expected end of stream")
	}
}

func TestBeltFromReader(t *testing.T) {
	belt := FromReader(bytes.NewReader([]byte("hello world")), 1024, 0)

	ctx := context.Background()
	data, err, ok := belt.Pull(ctx)
	if err != nil || !ok || string(data) != "hello world" {
		t.Fatalf("got (%q, %v, %v)", data, err, ok)
	}
	_, _, ok = belt.Pull(ctx)
	if ok {
		t.Fatal("expected end of stream")
	}
}

func TestBeltReader(t *testing.T) {
	belt := FromReader(bytes.NewReader([]byte("hello world")), 1024, 0)

	got, err := io.ReadAll(belt.Reader())
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}
}

func TestBeltReaderOverChannel(t *testing.T) {
	ch, belt := Channel(10, 0)
	ch <- Chunk{Data: []byte("hello")}
	ch <- Chunk{Data: []byte(" world")}
	close(ch)

	got, err := io.ReadAll(belt.Reader())
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}
}

func TestBeltReaderOverChannelError(t *testing.T) {
	ch, belt := Channel(10, 0)
	ch <- Chunk{Data: []byte("hello")}
	ch <- Chunk{Err: errors.New("oh no")}
	close(ch)

	buf, err := io.ReadAll(belt.Reader())
	if err == nil || err.Error() != "oh no" {
		t.Fatalf("expected error %q, got %v", "oh no", err)
	}
	if string(buf) != "hello" {
		t.Fatalf("got %q, want %q", buf, "hello")
	}
}

func TestBeltReaderOverChannelPartial(t *testing.T) {
	ch, belt := Channel(10, 0)
	ch <- Chunk{Data: []byte("hello")}
	ch <- Chunk{Data: []byte(" world")}
	close(ch)

	r := belt.Reader()
	buf := make([]byte, 5)
	if _, err := io.ReadFull(r, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "hello" {
		t.Fatalf("got %q, want %q", buf, "hello")
	}
}
