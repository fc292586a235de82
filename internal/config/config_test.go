package config

import "testing"

func validTestConfig() *Config {
	return &Config{
		Port:         "8460",
		JWTSecret:    "dev-secret-change-in-production",
		DBPassword:   "password",
		Env:          "development",
		TokenTTLDays: 14,
		AnonTTLDays:  14,
	}
}

func TestValidate_Development(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected development config to validate, got: %v", err)
	}
}

func TestValidate_MissingPort(t *testing.T) {
	cfg := validTestConfig()
	cfg.Port = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing PORT")
	}
}

func TestValidate_MissingSecret(t *testing.T) {
	cfg := validTestConfig()
	cfg.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing JWT_SECRET")
	}
}

func TestValidate_NonPositiveTTL(t *testing.T) {
	cfg := validTestConfig()
	cfg.TokenTTLDays = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero TOKEN_TTL_DAYS")
	}
}

func TestValidate_ProductionRejectsDefaults(t *testing.T) {
	cfg := validTestConfig()
	cfg.Env = "production"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected production config with default secret to fail validation")
	}

	cfg.JWTSecret = "a-sufficiently-long-production-secret-value"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected production config with default DB password to fail validation")
	}

	cfg.DBPassword = "an-actual-strong-password"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected hardened production config to validate, got: %v", err)
	}
}
