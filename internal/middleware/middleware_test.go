package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mahmoud7895/loisirtt-portal/internal/utils"
)

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authz string, seed func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if seed != nil {
		seed(c)
	}
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("handler chain: %v", err)
	}
	return rec
}

func TestJWTAuth(t *testing.T) {
	secret := "test-secret"
	id := utils.Identity{UserID: 7, Role: "ADMIN", Matricule: "12345", Nom: "Gharbi", Prenom: "Ines"}
	tok, err := utils.NewAccessToken(secret, id, 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	t.Run("missing header", func(t *testing.T) {
		rec := doRequest(t, JWTAuth(secret), "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doRequest(t, JWTAuth(secret), "Bearer nope", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		rec := doRequest(t, JWTAuth("other-secret"), "Bearer "+tok.Token, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid token sets claims", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok.Token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var gotRole, gotMatricule any
		inner := func(c echo.Context) error {
			gotRole = c.Get("role")
			gotMatricule = c.Get("matricule")
			return c.String(http.StatusOK, "ok")
		}
		if err := JWTAuth(secret)(inner)(c); err != nil {
			t.Fatalf("chain: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotRole != "ADMIN" || gotMatricule != "12345" {
			t.Errorf("claims in context: role=%v matricule=%v", gotRole, gotMatricule)
		}
	})
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    any
		allowed []string
		want    int
	}{
		{"allowed", "ADMIN", []string{"ADMIN"}, http.StatusOK},
		{"one of several", "AGENT", []string{"ADMIN", "AGENT"}, http.StatusOK},
		{"denied", "AGENT", []string{"ADMIN"}, http.StatusForbidden},
		{"missing", nil, []string{"ADMIN"}, http.StatusForbidden},
		{"wrong type", 12, []string{"ADMIN"}, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, RequireRole(tc.allowed...), "", func(c echo.Context) {
				if tc.role != nil {
					c.Set("role", tc.role)
				}
			})
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	body := []byte(`{"items":[]}`)

	enc, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(enc)
	if !ok {
		t.Fatal("decode failed")
	}
	if status != http.StatusOK {
		t.Errorf("status = %d", status)
	}
	if gotHdr.Get("Content-Type") != "application/json" {
		t.Errorf("header = %v", gotHdr)
	}
	if string(gotBody) != string(body) {
		t.Errorf("body = %q", gotBody)
	}

	if _, _, _, ok := decodePayload([]byte("short")); ok {
		t.Error("decode accepted a truncated payload")
	}
}
