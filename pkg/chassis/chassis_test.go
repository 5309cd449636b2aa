package chassis

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/RamsisDev/Latip-Hackaton/pkg/mcpquic"
)

func TestDevelopmentTLSConfig(t *testing.T) {
	cfg, err := DevelopmentTLSConfig("api.latip.test")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(cfg.NextProtos, "h3") || !slices.Contains(cfg.NextProtos, mcpquic.ALPNProtocolMCP) {
		t.Errorf("NextProtos = %v", cfg.NextProtos)
	}
	if err := cfg.Certificates[0].Leaf.VerifyHostname("api.latip.test"); err != nil {
		t.Errorf("dev host missing from cert: %v", err)
	}
}

func TestProductionTLSConfig_Missing(t *testing.T) {
	if _, err := ProductionTLSConfig("/nonexistent/cert.pem", "/nonexistent/key.pem"); err == nil {
		t.Error("expected error for missing files")
	}
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		addr   string
		altSvc string
	}{
		{":8443", `h3=":8443"; ma=86400`},
		{"127.0.0.1:9000", `h3=":9000"; ma=86400`},
		{"127.0.0.1:0", ""},
		{"bogus", ""},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			w := httptest.NewRecorder()
			securityHeaders(altSvc(tt.addr, ok)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			if got := w.Header().Get("Alt-Svc"); got != tt.altSvc {
				t.Errorf("Alt-Svc = %q, want %q", got, tt.altSvc)
			}
			if w.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing nosniff")
			}
		})
	}
}

func TestNew_RequiresHandler(t *testing.T) {
	if _, err := New(Config{Addr: ":0"}); err == nil {
		t.Error("expected error for nil handler")
	}
	s, err := New(Config{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()})
	if err != nil {
		t.Fatal(err)
	}
	if s.mcp != nil {
		t.Error("MCP handler must be nil without an MCP server")
	}
	if s.Addr() != nil {
		t.Error("Addr before Start must be nil")
	}
}
