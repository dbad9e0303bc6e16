package simplehttp

import "testing"

func TestZeroBodyReadsNothing(t *testing.T) {
	var body ZeroBody
	buf := make([]byte, 16)

	n, err := body.Read(buf)
	if err != nil || n != 0 {
		t.Fatalf("Read() = %d, %v, want 0, nil", n, err)
	}
	if err := body.Consume(); err != nil {
		t.Fatalf("Consume() = %v, want nil", err)
	}
}

func TestContentLengthBodyReadsExactBytes(t *testing.T) {
	transport := newFakeTransport([]byte("hello world"))
	reader := NewReader(transport, 64)
	body := newContentLengthBody(reader, 11)

	buf := make([]byte, 5)
	n, err := body.Read(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Fatalf("Read = %q, want hello", buf[:n])
	}

	n, err = body.Read(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(buf[:n]) != " worl" {
		t.Fatalf("Read = %q, want \" worl\"", buf[:n])
	}
}

func TestContentLengthBodyRejectsShortBody(t *testing.T) {
	transport := newFakeTransport([]byte("short"))
	reader := NewReader(transport, 64)
	body := newContentLengthBody(reader, 50)

	buf := make([]byte, 64)
	_, err := body.Read(buf)
	if err != ErrBadSyntax {
		t.Fatalf("Read() error = %v, want ErrBadSyntax", err)
	}
}

func TestContentLengthBodyConsumeDrainsRemaining(t *testing.T) {
	transport := newFakeTransport([]byte("0123456789"))
	reader := NewReader(transport, 64)
	body := newContentLengthBody(reader, 10)

	if err := body.Consume(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestContentLengthBodyRejectsOverlongChunk(t *testing.T) {
	transport := newFakeTransport([]byte("0123456789"))
	reader := NewReader(transport, 64)
	body := newContentLengthBody(reader, 5)

	buf := make([]byte, 64)
	_, err := body.Read(buf)
	if err != ErrBadSyntax {
		t.Fatalf("Read() error = %v, want ErrBadSyntax", err)
	}
}
