// Package client is the vidtube auth API as seen from a command-line client.
//
// GRPCClient owns one connection to the server, speaks the json codec, keeps
// the current token pair in memory and attaches the access token to every
// call. When an authenticated call comes back Unauthenticated and a refresh
// token is held, the pair is rotated once and the call retried.
//
// gRPC failures are mapped onto ErrUnauthorized, ErrUnavailable, ErrConflict
// and ErrInvalidInput so callers can match them with errors.Is.
package client
