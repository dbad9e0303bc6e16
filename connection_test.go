package simplehttp

import (
	"strings"
	"testing"
)

func runConnection(t *testing.T, request string, handler Handler) (*fakeTransport, error) {
	t.Helper()

	transport := newFakeTransport([]byte(request))
	reader := NewReader(transport, 4096)
	writer := NewWriter(transport, 4096)
	conn := NewConnection(transport, reader, writer, nil)

	err := conn.ProcessRequest(handler)
	return transport, err
}

func echoHandler(req *IncomingMessage, resp *OutgoingMessage) {
	resp.Headers().Add("Content-Type", "text/plain")
	_ = resp.WriteHead("200", "OK")
	_ = resp.WriteString("ok:" + req.Path())
	_ = resp.End()
}

func TestConnectionHTTP10GetEmptyResponse(t *testing.T) {
	var seenPath string
	handler := func(req *IncomingMessage, resp *OutgoingMessage) {
		seenPath = req.Path()
		_ = resp.WriteHead("200", "OK")
		_ = resp.End()
	}

	transport, err := runConnection(t, "GET / HTTP/1.0\r\n\r\n", handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seenPath != "/" {
		t.Fatalf("path = %q, want /", seenPath)
	}
	if !strings.HasPrefix(transport.sent.String(), "HTTP/1.0 200 OK\r\n") {
		t.Fatalf("response = %q", transport.sent.String())
	}
	if !transport.closed {
		t.Fatal("expected the transport to be closed")
	}
}

func TestConnectionHTTP09Get(t *testing.T) {
	transport, err := runConnection(t, "GET /\r\n", echoHandler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// HTTP/0.9 never emits a status line or headers.
	if transport.sent.String() != "ok:/" {
		t.Fatalf("response = %q, want ok:/", transport.sent.String())
	}
}

func TestConnectionHTTP09RejectsNonGet(t *testing.T) {
	_, err := runConnection(t, "POST /\r\n", echoHandler)
	if err == nil {
		t.Fatal("expected an error for an HTTP/0.9 POST")
	}
}

func TestConnectionPostWithContentLength(t *testing.T) {
	var body []byte
	handler := func(req *IncomingMessage, resp *OutgoingMessage) {
		buf := make([]byte, 64)
		n, _ := req.ReadBody(buf)
		body = buf[:n]
		_ = resp.WriteHead("200", "OK")
		_ = resp.End()
	}

	request := "POST /submit HTTP/1.0\r\nContent-Length: 5\r\n\r\nhello"
	_, err := runConnection(t, request, handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "hello" {
		t.Fatalf("body = %q, want hello", body)
	}
}

func TestConnectionMalformedVersionIsBadRequest(t *testing.T) {
	transport, err := runConnection(t, "GET / HTTP/12.0\r\n\r\n", echoHandler)
	if err == nil {
		t.Fatal("expected an error for a malformed version")
	}
	if !strings.Contains(transport.sent.String(), "400 Bad Request") {
		t.Fatalf("response = %q, want a 400", transport.sent.String())
	}
}

func TestConnectionCaseInsensitiveMethodAndHeader(t *testing.T) {
	var contentType string
	handler := func(req *IncomingMessage, resp *OutgoingMessage) {
		values, _ := req.Headers().Get("CONTENT-TYPE")
		if len(values) > 0 {
			contentType = values[0]
		}
		_ = resp.WriteHead("200", "OK")
		_ = resp.End()
	}

	request := "get / HTTP/1.0\r\ncontent-type: text/plain\r\n\r\n"
	_, err := runConnection(t, request, handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contentType != "text/plain" {
		t.Fatalf("contentType = %q, want text/plain", contentType)
	}
}

func TestConnectionBodyShorterThanDeclaredIsBadSyntax(t *testing.T) {
	handler := func(req *IncomingMessage, resp *OutgoingMessage) {
		buf := make([]byte, 64)
		_, _ = req.ReadBody(buf)
		_ = resp.WriteHead("200", "OK")
		_ = resp.End()
	}

	request := "POST / HTTP/1.0\r\nContent-Length: 10\r\n\r\nhi"
	_, err := runConnection(t, request, handler)
	if err == nil {
		t.Fatal("expected an error for a body shorter than Content-Length")
	}
}

func TestConnectionHandlerPanicYieldsInternalError(t *testing.T) {
	handler := func(req *IncomingMessage, resp *OutgoingMessage) {
		panic("boom")
	}

	transport, err := runConnection(t, "GET / HTTP/1.0\r\n\r\n", handler)
	if err == nil {
		t.Fatal("expected an error when the handler panics")
	}
	if !strings.Contains(transport.sent.String(), "500 Internal Server Error") {
		t.Fatalf("response = %q, want a 500", transport.sent.String())
	}
}

func TestConnectionHandlerThatNeverStartsIsInternalError(t *testing.T) {
	handler := func(req *IncomingMessage, resp *OutgoingMessage) {}

	transport, err := runConnection(t, "GET / HTTP/1.0\r\n\r\n", handler)
	if err == nil {
		t.Fatal("expected an error for a handler that never writes a response")
	}
	if !strings.Contains(transport.sent.String(), "500 Internal Server Error") {
		t.Fatalf("response = %q, want a 500", transport.sent.String())
	}
}

func TestConnectionDuplicateContentLengthIsBadRequest(t *testing.T) {
	request := "POST / HTTP/1.0\r\nContent-Length: 5\r\nContent-Length: 6\r\n\r\nhello!"
	_, err := runConnection(t, request, echoHandler)
	if err == nil {
		t.Fatal("expected an error for duplicate Content-Length headers")
	}
}
