package utils

import (
	"testing"
)

func TestJwtGenerateAndValidate(t *testing.T) {
	t.Setenv("TOKEN_HOUR_LIFESPAN", "1")

	token, err := JwtGenerate(42, "station-uuid-1", "manager")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	parsed, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("JwtValidate: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("token reported invalid")
	}

	claims, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok {
		t.Fatalf("unexpected claims type %T", parsed.Claims)
	}
	if claims.ID != 42 {
		t.Errorf("ID = %d, want 42", claims.ID)
	}
	if claims.StationId != "station-uuid-1" {
		t.Errorf("StationId = %q", claims.StationId)
	}
	if claims.Role != "manager" {
		t.Errorf("Role = %q", claims.Role)
	}
}

func TestJwtValidate_RejectsTampering(t *testing.T) {
	t.Setenv("TOKEN_HOUR_LIFESPAN", "1")

	token, err := JwtGenerate(1, "s", "operator")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"
	if parsed, err := JwtValidate(tampered); err == nil && parsed.Valid {
		t.Fatal("tampered token accepted")
	}
}

func TestJwtGenerate_RequiresLifespan(t *testing.T) {
	t.Setenv("TOKEN_HOUR_LIFESPAN", "")
	if _, err := JwtGenerate(1, "s", "operator"); err == nil {
		t.Fatal("expected error without TOKEN_HOUR_LIFESPAN")
	}
}
