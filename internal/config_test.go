package internal

import (
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/metadata"
	"github.com/starford/ansuz/internal/note"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestComposeConfig_Validation(t *testing.T) {
	cfg := ComposeConfig{Position: "sideways"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid position should fail validation")
	}
	cfg = ComposeConfig{Template: "fancy"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid template should fail validation")
	}
	cfg = ComposeConfig{Position: "top", Template: "callout", Inplace: true}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid compose config rejected: %v", err)
	}
}

func TestComposeConfig_Conversion(t *testing.T) {
	cfg := ComposeConfig{Position: "top", Template: "callout", Inplace: true}
	nc, err := cfg.NoteComposeConfig()
	if err != nil {
		t.Fatal(err)
	}
	if nc.Position != note.PositionTop || nc.Template != metadata.TemplateCallout || !nc.Inplace {
		t.Errorf("converted = %+v", nc)
	}

	// Zero values fall back to the engine defaults.
	nc, err = (&ComposeConfig{}).NoteComposeConfig()
	if err != nil {
		t.Fatal(err)
	}
	if nc.Position != note.PositionBottom || nc.Template != metadata.TemplateStandard {
		t.Errorf("defaults = %+v", nc)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestNewDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
