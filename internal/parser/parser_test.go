package parser

import (
	"testing"
)

func TestFindToken_Basic(t *testing.T) {
	token, ok := FindToken("Invoice for PO904821")
	if !ok {
		t.Fatal("expected a token")
	}
	if token != "PO904821" {
		t.Errorf("token = %q, want PO904821", token)
	}
}

func TestFindToken_LeftmostWins(t *testing.T) {
	token, ok := FindToken("Ref: 99 APO1023 see PO55")
	if !ok {
		t.Fatal("expected a token")
	}
	if token != "APO1023" {
		t.Errorf("token = %q, want APO1023 (leftmost match)", token)
	}
}

func TestFindToken_UppercasePrefixGreedy(t *testing.T) {
	token, _ := FindToken("shipment XYZPO777 received")
	if token != "XYZPO777" {
		t.Errorf("token = %q, want XYZPO777", token)
	}
}

func TestFindToken_CaseSensitive(t *testing.T) {
	if token, ok := FindToken("order po1234 confirmed"); ok {
		t.Errorf("lowercase po matched as %q, want no match", token)
	}
}

func TestFindToken_RequiresDigits(t *testing.T) {
	if token, ok := FindToken("see PO for details"); ok {
		t.Errorf("PO without digits matched as %q, want no match", token)
	}
}

func TestFindToken_NoMatch(t *testing.T) {
	if _, ok := FindToken("nothing to see here 12345"); ok {
		t.Error("expected no token")
	}
	if _, ok := FindToken(""); ok {
		t.Error("expected no token in empty text")
	}
}

func TestFindToken_EmbeddedInNoise(t *testing.T) {
	token, _ := FindToken("|!~ scn0041\nPO31337_page1 end")
	if token != "PO31337" {
		t.Errorf("token = %q, want PO31337", token)
	}
}
