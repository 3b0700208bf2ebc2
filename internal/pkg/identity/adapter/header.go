package adapter

import (
	"net/http"
	"strings"

	"go-agora/internal/pkg/identity/port"
)

// HeaderResolver trusts identity headers set by the upstream gateway, which
// owns token verification. Requests without the headers are anonymous.
type HeaderResolver struct{}

func NewHeaderResolver() *HeaderResolver { return &HeaderResolver{} }

var _ port.Resolver = (*HeaderResolver)(nil)

func (r *HeaderResolver) Resolve(h http.Header) (*port.Identity, error) {
	userID := strings.TrimSpace(h.Get("X-User-Id"))
	if userID == "" {
		return nil, nil
	}
	userName := strings.TrimSpace(h.Get("X-User-Name"))
	if userName == "" {
		userName = userID
	}
	return &port.Identity{UserID: userID, UserName: userName}, nil
}
