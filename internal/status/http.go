package status

import (
	"bytes"
	"fmt"
)

// looksLikeHTTPGet reports whether a request's leading bytes are an HTTP
// GET request line, the signal to answer the XML wrapped in a minimal
// HTTP/1.1 200 response instead of the raw info-protocol reply (spec.md
// §4.9: "HTTP GET requests on the same socket return the XML inside a
// minimal HTTP/1.1 200 response").
func looksLikeHTTPGet(b []byte) bool {
	return bytes.HasPrefix(b, []byte("GET "))
}

// wrapHTTPResponse frames body as a minimal HTTP/1.1 200 OK text/xml
// response, closing the connection after writing (no keep-alive — this
// listener is single-shot per connection).
func wrapHTTPResponse(body []byte) []byte {
	header := fmt.Sprintf(
		"HTTP/1.1 200 OK\r\nContent-Type: text/xml; charset=utf-8\r\nContent-Length: %d\r\nConnection: close\r\n\r\n",
		len(body),
	)
	return append([]byte(header), body...)
}
