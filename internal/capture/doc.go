// Package capture produces the raw request/response text shown by the
// inspector.
//
// # Overview
//
// An Exchange pairs one raw HTTP/1.1 request with its raw response. Raw
// means exactly what travels on the wire: a start line, header lines
// terminated by CRLF, an empty line, then the body. Exchanges come from
// three sources:
//
//   - LoadFile reads hand-written or saved message files
//   - LoadHAR converts browser HAR exports
//   - RenderRequest and RenderResponse serialise traffic seen by the proxy
//
// Nothing in this package reformats bodies; that is the job of the message
// package once the text reaches the display.
package capture
