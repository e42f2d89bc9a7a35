package helpers

import "testing"

func TestParseProxy(t *testing.T) {
	u, err := ParseProxy("10.0.0.1:3128")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.String() != "http://10.0.0.1:3128" {
		t.Errorf("expected scheme to be added, got %s", u)
	}

	u, err = ParseProxy("   ")
	if err != nil || u != nil {
		t.Errorf("empty proxy should yield nil, nil; got %v, %v", u, err)
	}

	if _, err := ParseProxy("ftp://10.0.0.1:21"); err == nil {
		t.Error("expected ftp scheme to be rejected")
	}
}
