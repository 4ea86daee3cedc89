// Package client talks to the pointfeed backend over gRPC.
//
// GRPCClient keeps the session credential returned by signup or login and
// attaches it as a bearer token to every later call, unary or streaming.
// gRPC status codes are mapped onto the sentinel errors in errors.go so
// callers can match them with errors.Is.
package client
