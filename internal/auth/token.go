package auth

import (
	"fmt"
	"os"
	"strings"
)

// TokenSource supplies the bearer token attached to every API request.
// Injecting it keeps the data-fetching layer free of ambient global reads.
type TokenSource interface {
	Token() (string, error)
}

// Static returns a fixed token.
type Static string

func (s Static) Token() (string, error) {
	if s == "" {
		return "", fmt.Errorf("auth: empty static token")
	}
	return string(s), nil
}

// FileSource re-reads a token file on every call so a rotated token is picked
// up without restarting. No refresh or expiry handling beyond that.
type FileSource struct {
	Path string
}

func (f FileSource) Token() (string, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("auth: read token file: %w", err)
	}
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", fmt.Errorf("auth: token file %s is empty", f.Path)
	}
	return tok, nil
}

// FromEnvOrFile picks the right source for the loaded config: a literal token
// wins over a token file.
func FromEnvOrFile(token, path string) (TokenSource, error) {
	switch {
	case token != "":
		return Static(token), nil
	case path != "":
		return FileSource{Path: path}, nil
	default:
		return nil, fmt.Errorf("auth: no token configured")
	}
}
