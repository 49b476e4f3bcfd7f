package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestLocalClientWriteThenRead(t *testing.T) {
	tmpDir := t.TempDir()
	client, err := Connect(NewLocalCredentials(tmpDir))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	ctx := context.Background()
	n, err := client.Write(ctx, "artifacts/a.bin", bytes.NewReader([]byte("hello world")))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 11 {
		t.Errorf("file size = %d, want 11", n)
	}

	r, err := client.Read(ctx, "artifacts/a.bin")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("content = %q, want %q", got, "hello world")
	}
}

func TestLocalClientReadNotFound(t *testing.T) {
	tmpDir := t.TempDir()
	client, _ := Connect(NewLocalCredentials(tmpDir))

	_, err := client.Read(context.Background(), "missing.bin")
	var notFound *ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %T: %v", err, err)
	}
}

func TestLocalClientRejectsPathTraversal(t *testing.T) {
	tmpDir := t.TempDir()
	client, _ := Connect(NewLocalCredentials(tmpDir))

	_, err := client.Read(context.Background(), "../../etc/passwd")
	var invalid *ErrInvalidPath
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidPath, got %T: %v", err, err)
	}
}

func TestConnectRejectsUnimplementedBackend(t *testing.T) {
	_, err := Connect(NewS3CompatibleCredentials("key", "secret", "https://example.com", "bucket"))
	if err == nil {
		t.Fatal("expected Connect to reject an S3-compatible backend with no in-core client")
	}
}
