package i18n

import "testing"

func TestGetCatalogFallsBackToEnUS(t *testing.T) {
	tests := []struct {
		name   string
		locale string
	}{
		{name: "empty locale", locale: ""},
		{name: "unknown locale", locale: "xx-YY"},
		{name: "unparsable locale", locale: "???"},
		{name: "regional variant", locale: "en-GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := GetCatalog(tt.locale)
			if c == nil {
				t.Fatal("expected a catalog")
			}
			if c.Locale() != "en-US" {
				t.Fatalf("expected en-US fallback, got %q", c.Locale())
			}
		})
	}
}

func TestFormatTemplatesMetadata(t *testing.T) {
	c := GetCatalog("en-US")

	msg := c.Format(CodeInsufficientFunds, map[string]string{"Fee": "25"})
	if msg != "Not enough coins to pay the entry fee of 25" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestFormatUnknownCodeReturnsCode(t *testing.T) {
	c := GetCatalog("en-US")
	if msg := c.Format("SOME_MISSING_CODE", nil); msg != "SOME_MISSING_CODE" {
		t.Fatalf("expected code passthrough, got %q", msg)
	}
}
