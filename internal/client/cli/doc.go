// Package cli provides the interactive pointfeed command-line client.
//
// It wires configuration and the gRPC client into a REPL. Typical flow:
// sign up or log in, follow a few people, post, read the feed and watch new
// posts arrive live.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
