package profile

import (
	"os"

	"github.com/sogoba/jokko/internal/config"
)

const DefaultProfileName = "default"

// EnvProfile is the environment variable overriding the active profile.
const EnvProfile = "JOKKO_PROFILE"

// Resolve determines the active profile name using precedence:
// 1. flagOverride (--profile flag)
// 2. JOKKO_PROFILE environment variable
// 3. config.toml default_profile
// 4. "default"
func Resolve(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	if env := os.Getenv(EnvProfile); env != "" {
		return env
	}
	cfg, err := config.Load(ConfigPath())
	if err == nil && cfg.DefaultProfile != "" {
		return cfg.DefaultProfile
	}
	return DefaultProfileName
}
