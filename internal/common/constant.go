// Package common contains shared constants and sentinel errors used across
// the ledger server components.
package common

// AuthorizationHeaderName is the HTTP header carrying the access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header value.
const BearerPrefix = "Bearer "

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"
