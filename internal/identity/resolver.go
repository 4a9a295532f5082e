package identity

import (
	"errors"
	"os"

	"github.com/sogoba/jokko/internal/config"
)

// ErrNoCurrentUser is returned when no user identity can be resolved.
// Every mutating chat operation requires an actor; callers surface this
// instead of silently doing nothing.
var ErrNoCurrentUser = errors.New("no current user")

// EnvUserID is the environment variable overriding the current user id.
const EnvUserID = "JOKKO_USER_ID"

// Resolver exposes the identity of the active user. The messaging core
// consumes it as an opaque lookup; who is logged in is decided elsewhere.
type Resolver interface {
	CurrentUserID() (string, error)
}

// Static is a Resolver with a fixed user id. An empty id resolves to no user.
type Static struct {
	ID string
}

func (s Static) CurrentUserID() (string, error) {
	if s.ID == "" {
		return "", ErrNoCurrentUser
	}
	return s.ID, nil
}

// FromConfig resolves the current user using precedence:
// 1. flagOverride (--user flag)
// 2. JOKKO_USER_ID environment variable
// 3. config.toml user_id
// An unresolvable identity yields a Static resolver that reports ErrNoCurrentUser.
func FromConfig(flagOverride, configPath string) Resolver {
	if flagOverride != "" {
		return Static{ID: flagOverride}
	}
	if env := os.Getenv(EnvUserID); env != "" {
		return Static{ID: env}
	}
	cfg, err := config.Load(configPath)
	if err == nil && cfg.UserID != "" {
		return Static{ID: cfg.UserID}
	}
	return Static{}
}
