package port

import "net/http"

// Identity is a verified user resolved from request headers.
type Identity struct {
	UserID   string
	UserName string
}

// Resolver maps request headers to a verified identity. A nil Identity with a
// nil error means the request is anonymous; anonymous connections may receive
// broadcasts but are rejected for typing and posting.
type Resolver interface {
	Resolve(h http.Header) (*Identity, error)
}
