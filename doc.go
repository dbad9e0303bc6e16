/*
Package simplehttp implements a small embeddable HTTP/1.x origin server.

It accepts TCP connections, parses exactly one request per connection
(request line, headers, optional Content-Length body), invokes a
user-supplied Handler that produces a response, and closes the connection.
It targets callers who want a minimal, dependency-light HTTP surface for
serving static content or scripted responses rather than a full HTTP/1.1
stack.

simplehttp deliberately does not support TLS, HTTP/2, chunked
transfer-encoding, persistent connections, pipelining, or request bodies
larger than a machine word. It also never parses an HTTP response, since it
is a server and not a client.

The core of the package is the request-processing pipeline: byte-level
parsers for the request line, request-URI and header fields; a buffered
reader/writer pair driven with an advance/examine cursor discipline; a
per-connection state machine gluing parsing, body framing, handler
invocation and response emission; and a fixed-size worker pool that fans
accepted connections out to goroutines each owning preallocated I/O
buffers.
*/
package simplehttp
