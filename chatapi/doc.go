// Package chatapi is the client side of the chat backend endpoint.
//
// A turn is one POST of a ChatRequest (the whole transcript, the enabled
// function names and the FAR flag). The backend answers in one of two ways
// and the client adapts to whichever it receives:
//
//   - Whole payload: Content-Type application/json, body {"response": "..."}.
//   - Stream: any other content type. The body is a sequence of UTF-8 text
//     fragments ending when the connection closes. Stream.Next yields them
//     one at a time in arrival order and returns io.EOF at the end.
//
// Non-2xx responses are returned as *StatusError; the body is discarded.
//
// The Backend interface lets the session layer be tested without a server;
// see chatapi/testutil for a mock.
package chatapi
