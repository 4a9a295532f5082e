package identity

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/sogoba/jokko/internal/config"
)

func TestStaticResolver(t *testing.T) {
	id, err := Static{ID: "client#1"}.CurrentUserID()
	if err != nil {
		t.Fatalf("CurrentUserID() error = %v", err)
	}
	if id != "client#1" {
		t.Errorf("id = %q, want client#1", id)
	}
}

func TestStaticResolverEmpty(t *testing.T) {
	_, err := Static{}.CurrentUserID()
	if !errors.Is(err, ErrNoCurrentUser) {
		t.Errorf("error = %v, want ErrNoCurrentUser", err)
	}
}

func TestFromConfigPrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := config.Save(configPath, &config.Config{UserID: "from-config"}); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvUserID, "from-env")

	if id, _ := FromConfig("from-flag", configPath).CurrentUserID(); id != "from-flag" {
		t.Errorf("flag override: id = %q, want from-flag", id)
	}
	if id, _ := FromConfig("", configPath).CurrentUserID(); id != "from-env" {
		t.Errorf("env override: id = %q, want from-env", id)
	}

	t.Setenv(EnvUserID, "")
	if id, _ := FromConfig("", configPath).CurrentUserID(); id != "from-config" {
		t.Errorf("config fallback: id = %q, want from-config", id)
	}

	_, err := FromConfig("", filepath.Join(t.TempDir(), "missing.toml")).CurrentUserID()
	if !errors.Is(err, ErrNoCurrentUser) {
		t.Errorf("unresolvable identity: error = %v, want ErrNoCurrentUser", err)
	}
}
