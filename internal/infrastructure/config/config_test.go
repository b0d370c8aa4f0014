package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
		"MAIL_FROM":  "no-reply@example.com",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || !cfg.IsDevelopment() {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour || cfg.Auth.ResetTokenTTL != 5*time.Minute || cfg.Auth.CodeTTL != 5*time.Minute {
		t.Fatalf("unexpected lifetimes: %+v", cfg.Auth)
	}
	if cfg.Auth.BcryptCost != 10 || cfg.Auth.JWTIssuer != "account-api" {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Store.Driver != StoreDriverPostgres {
		t.Fatalf("expected postgres store, got %s", cfg.Store.Driver)
	}
	if cfg.Mail.Driver != MailDriverSMTP || cfg.Mail.Host != "smtp.gmail.com" || cfg.Mail.Port != 587 {
		t.Fatalf("unexpected mail defaults: %+v", cfg.Mail)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":        "s3cret",
		"STORE_DRIVER":      "mongo",
		"MONGO_DB":          "accounts_test",
		"MAIL_DRIVER":       "log",
		"SESSION_TOKEN_TTL": "1h",
		"BCRYPT_COST":       "12",
		"ENV":               "production",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Store.Driver != StoreDriverMongo || cfg.Mongo.Database != "accounts_test" {
		t.Fatalf("unexpected store config: %+v %+v", cfg.Store, cfg.Mongo)
	}
	if cfg.Auth.SessionTTL != time.Hour || cfg.Auth.BcryptCost != 12 {
		t.Fatalf("unexpected auth config: %+v", cfg.Auth)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("production must not be development")
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{"MAIL_DRIVER": "log"}, "JWT_SECRET"},
		{"unknown store", map[string]string{"JWT_SECRET": "s", "MAIL_DRIVER": "log", "STORE_DRIVER": "sqlite"}, "STORE_DRIVER"},
		{"unknown mail", map[string]string{"JWT_SECRET": "s", "MAIL_DRIVER": "pigeon"}, "MAIL_DRIVER"},
		{"smtp without sender", map[string]string{"JWT_SECRET": "s"}, "MAIL_FROM"},
		{"zero ttl", map[string]string{"JWT_SECRET": "s", "MAIL_DRIVER": "log", "RESET_TOKEN_TTL": "0s"}, "lifetimes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(tc.env))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}

func TestMailConfig_Sender(t *testing.T) {
	if got := (MailConfig{Username: "me@gmail.com"}).Sender(); got != "me@gmail.com" {
		t.Fatalf("expected fallback to username, got %q", got)
	}
	if got := (MailConfig{From: "a@x.io", Username: "me@gmail.com"}).Sender(); got != "a@x.io" {
		t.Fatalf("expected From, got %q", got)
	}
}
