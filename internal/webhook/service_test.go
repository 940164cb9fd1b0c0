package webhook

import "testing"

func TestCampaignSource(t *testing.T) {
	tests := []struct {
		recipient string
		want      string
	}{
		{"summer-sale@mail.dealership.com", "summer-sale"},
		{"Summer-Sale@mail.dealership.com", "summer-sale"},
		{"  trade-in@mg.example.com  ", "trade-in"},
		{"leads+fall-promo@mg.example.com", "leads"},
		{"no-at-sign", "no-at-sign"},
	}

	for _, tt := range tests {
		if got := campaignSource(tt.recipient); got != tt.want {
			t.Errorf("campaignSource(%q) = %q, want %q", tt.recipient, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{`"Josh Miller" <josh@example.com>`, "Josh Miller"},
		{`Josh <josh@example.com>`, "Josh"},
		{`josh@example.com`, ""},
		{``, ""},
		{`not an address`, ""},
	}

	for _, tt := range tests {
		if got := displayName(tt.from); got != tt.want {
			t.Errorf("displayName(%q) = %q, want %q", tt.from, got, tt.want)
		}
	}
}

func TestMessageBody(t *testing.T) {
	in := InboundEmail{
		BodyPlain:    "new text\n\n> quoted history",
		BodyStripped: "new text",
	}
	if got := messageBody(in); got != "new text" {
		t.Fatalf("messageBody = %q, want stripped text", got)
	}

	in.BodyStripped = "   "
	if got := messageBody(in); got != in.BodyPlain {
		t.Fatalf("messageBody = %q, want plain body fallback", got)
	}
}
