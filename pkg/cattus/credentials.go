package cattus

// CredentialProvider supplies the bearer token attached to every request.
// The dashboard keeps its token in a cookie; the SDK does not read ambient
// state so that callers stay testable and can rotate tokens at will.
type CredentialProvider interface {
	Token() (string, error)
}

// TokenFunc adapts a plain function to a CredentialProvider.
type TokenFunc func() (string, error)

func (f TokenFunc) Token() (string, error) { return f() }

// StaticToken is a fixed-token provider, mainly for tests and scripts.
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }
