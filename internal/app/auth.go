package app

// TokenProvider is the narrow port to whatever holds the signed-in identity.
// Token decoding itself happens elsewhere; the core only needs the bearer
// token for authenticated calls and a stable user id to scope local state.
//
// An empty UserID means no identity: authenticated sync and activity
// delivery are skipped upstream in that case.
type TokenProvider interface {
	Token() string
	UserID() string
}

// StaticTokenProvider serves a fixed token/identity pair, typically loaded
// from config or the environment.
type StaticTokenProvider struct {
	BearerToken string
	Subject     string
}

func (p StaticTokenProvider) Token() string  { return p.BearerToken }
func (p StaticTokenProvider) UserID() string { return p.Subject }

// AnonymousProvider is the signed-out identity.
var AnonymousProvider = StaticTokenProvider{}
