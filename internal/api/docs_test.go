package api

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/useraccounts/account-api/docs"
	"github.com/useraccounts/account-api/internal/core/security"
)

type swaggerDoc struct {
	Paths map[string]map[string]struct {
		Responses map[string]json.RawMessage `json:"responses"`
	} `json:"paths"`
}

func TestSwaggerDoc_MatchesRoutes(t *testing.T) {
	var doc swaggerDoc
	if err := json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc); err != nil {
		t.Fatalf("swagger doc is not valid JSON: %v", err)
	}

	tokens, err := security.NewJWTService("secret", "account-api")
	if err != nil {
		t.Fatalf("NewJWTService: %v", err)
	}
	e := NewRouter(RouterConfig{
		Accounts:   &okService{},
		Tokens:     tokens,
		Log:        zerolog.Nop(),
		Registerer: prometheus.NewRegistry(),
	})

	served := make(map[string]bool)
	for _, r := range e.Routes() {
		if !strings.HasPrefix(r.Path, "/api/user/") {
			continue
		}
		key := strings.ToLower(r.Method) + " " + r.Path
		served[key] = true
		if _, ok := doc.Paths[r.Path][strings.ToLower(r.Method)]; !ok {
			t.Errorf("%s is served but not documented", key)
		}
	}

	allowed := map[string]bool{"200": true, "201": true, "204": true, "400": true, "401": true, "404": true, "500": true}
	for path, ops := range doc.Paths {
		for method, op := range ops {
			key := method + " " + path
			if !served[key] {
				t.Errorf("%s is documented but not served", key)
			}
			for code := range op.Responses {
				if !allowed[code] {
					t.Errorf("%s documents status %s", key, code)
				}
			}
		}
	}
	if len(served) != 7 {
		t.Fatalf("expected 7 account routes, got %d", len(served))
	}
}
