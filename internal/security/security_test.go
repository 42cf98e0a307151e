package security_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/buddyboard/buddyboard/internal/security"
)

// ─── Classify ─────────────────────────────────────────────────────────────────

func TestClassifyNarrow(t *testing.T) {
	tests := []struct {
		text    string
		valid   bool
		rule    string
		message string
	}{
		{"", true, "", ""},
		{"just a normal plain-text sentence with no contact info", true, "", ""},
		{"contact me at jane.doe@example.com please", false, security.RuleEmail, security.MsgEmail},
		{"call 081-234-5678", false, security.RulePhone, security.MsgPhone},
		{"0812345678", false, security.RulePhone, security.MsgPhone},
		{"+66812345678", false, security.RulePhone, security.MsgPhone},
		{"add me on line id: foo", false, security.RuleSocial, security.MsgSocial},
		{"ADD ME ON LINE", false, security.RuleSocial, security.MsgSocial},
		{"ไลน์ไอดี: foo", false, security.RuleSocial, security.MsgSocial},
		{"I like to line up early", false, security.RuleSocial, security.MsgSocial},
		{"see https://example.com/x", false, security.RuleURL, security.MsgURL},
		{"see http://x.co", false, security.RuleURL, security.MsgURL},
		{"see https://\u00a0next", true, "", ""},
		{"see https://\u3000next", true, "", ""},
		{"see https://\ufeffnext", true, "", ""},
		{"see https://\u2028next", true, "", ""},
		{"see https://\vnext", true, "", ""},
		{"see https://x.co\u00a0today", false, security.RuleURL, security.MsgURL},
		{"find me on facebook", true, "", ""},
		{"ig: foo", true, "", ""},
		{"mail me at a@b.com or visit https://x.com", false, security.RuleEmail, security.MsgEmail},
		{"หาเพื่อนไปเที่ยวเชียงใหม่ วันเสาร์นี้", true, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := security.Classify(tt.text, security.NarrowRuleset)
			if got.Valid != tt.valid {
				t.Fatalf("Classify(%q) valid = %v, want %v", tt.text, got.Valid, tt.valid)
			}
			if got.Rule != tt.rule {
				t.Errorf("Classify(%q) rule = %q, want %q", tt.text, got.Rule, tt.rule)
			}
			if got.Message != tt.message {
				t.Errorf("Classify(%q) message = %q, want %q", tt.text, got.Message, tt.message)
			}
		})
	}
}

func TestClassifyBroad(t *testing.T) {
	tests := []struct {
		text  string
		valid bool
		rule  string
	}{
		{"", true, ""},
		{"just a normal plain-text sentence with no contact info", true, ""},
		{"find me on facebook", false, security.RuleSocial},
		{"ig: foo", false, security.RuleSocial},
		{"ทักไอจีมา", false, security.RuleSocial},
		{"ขอเบอร์หน่อย", false, security.RuleSocial},
		{"แอดเฟซมาได้", false, security.RuleSocial},
		{"my tel is secret", false, security.RuleSocial},
		{"hotel near the beach", false, security.RuleSocial},
		{"add me on line id: foo", false, security.RuleSocial},
		{"call 081-234-5678", false, security.RulePhone},
		{"jane.doe@example.com", false, security.RuleEmail},
		{"see https://example.com/x", false, security.RuleURL},
		{"mail me at a@b.com or visit https://x.com", false, security.RuleEmail},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := security.BroadRuleset.Classify(tt.text)
			if got.Valid != tt.valid {
				t.Fatalf("Classify(%q) valid = %v, want %v", tt.text, got.Valid, tt.valid)
			}
			if got.Rule != tt.rule {
				t.Errorf("Classify(%q) rule = %q, want %q", tt.text, got.Rule, tt.rule)
			}
		})
	}
}

func TestClassifyIdempotent(t *testing.T) {
	inputs := []string{"", "ig: foo", "call 081-234-5678", "hello"}
	for _, in := range inputs {
		first := security.Classify(in, security.BroadRuleset)
		second := security.Classify(in, security.BroadRuleset)
		if first != second {
			t.Errorf("Classify(%q) not deterministic: %+v vs %+v", in, first, second)
		}
	}
}

func TestClassifyConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r := security.Classify("line id: foo", security.NarrowRuleset); r.Rule != security.RuleSocial {
				t.Errorf("unexpected result %+v", r)
			}
		}()
	}
	wg.Wait()
}

func TestClassifyLongInput(t *testing.T) {
	long := strings.Repeat("ok ", 100_000)
	if r := security.Classify(long, security.NarrowRuleset); !r.Valid {
		t.Errorf("long plain input rejected: %s", r.Message)
	}
}

func TestRulesetOrder(t *testing.T) {
	want := []string{security.RuleEmail, security.RulePhone, security.RuleSocial, security.RuleURL}
	for _, rs := range []security.Ruleset{security.NarrowRuleset, security.BroadRuleset} {
		rules := rs.Rules()
		if len(rules) != len(want) {
			t.Fatalf("%s: %d rules, want %d", rs.Name(), len(rules), len(want))
		}
		for i, r := range rules {
			if r.Name != want[i] {
				t.Errorf("%s: rule %d = %q, want %q", rs.Name(), i, r.Name, want[i])
			}
		}
	}
}

func TestRulesetFor(t *testing.T) {
	cases := map[string]string{
		security.FieldTitle:       "narrow",
		security.FieldDescription: "narrow",
		security.FieldComment:     "broad",
		"bio":                     "broad",
	}
	for field, want := range cases {
		if got := security.RulesetFor(field).Name(); got != want {
			t.Errorf("RulesetFor(%q) = %q, want %q", field, got, want)
		}
	}

	if _, ok := security.RulesetByName("narrow"); !ok {
		t.Error("narrow ruleset should resolve")
	}
	if _, ok := security.RulesetByName("strict"); ok {
		t.Error("unknown ruleset should not resolve")
	}
}

// ─── ValidateFields ───────────────────────────────────────────────────────────

func TestValidateFields(t *testing.T) {
	fields := []security.Field{
		{Name: "title", Value: "Hiking buddy", Ruleset: security.NarrowRuleset},
		{Name: "description", Value: "add my line id", Ruleset: security.NarrowRuleset},
		{Name: "comment", Value: "see https://x.com", Ruleset: security.BroadRuleset},
	}
	got, err := security.ValidateFields(context.Background(), fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rejections, got %d: %+v", len(got), got)
	}
	if got["description"].Rule != security.RuleSocial {
		t.Errorf("description rule = %q", got["description"].Rule)
	}
	if got["comment"].Message != security.MsgURL || got["comment"].Ruleset != "broad" {
		t.Errorf("comment rejection = %+v", got["comment"])
	}
	if _, ok := got["title"]; ok {
		t.Error("clean title should not be rejected")
	}
}

func TestValidateFieldsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := security.ValidateFields(ctx, []security.Field{{Name: "a", Value: "x", Ruleset: security.BroadRuleset}})
	if err == nil {
		t.Error("expected context error")
	}
}

// ─── DataMasker ───────────────────────────────────────────────────────────────

func TestMaskContact(t *testing.T) {
	m := security.NewDataMasker(true)
	email, phone := m.MaskContact("john.doe@example.com", "081-234-5678")
	if email != "jo***@***.com" {
		t.Errorf("masked email = %q", email)
	}
	if phone != "***-***-5678" {
		t.Errorf("masked phone = %q", phone)
	}

	email, phone = m.MaskContact("", "")
	if email != "" || phone != "" {
		t.Error("empty values should stay empty")
	}
}

func TestMaskContactDisabled(t *testing.T) {
	m := security.NewDataMasker(false)
	email, phone := m.MaskContact("john.doe@example.com", "0812345678")
	if email != "john.doe@example.com" || phone != "0812345678" {
		t.Error("disabled masker should pass values through")
	}
}

func TestHashID(t *testing.T) {
	a := security.HashID("api-key")
	if len(a) != 16 {
		t.Errorf("hash length = %d, want 16", len(a))
	}
	if a == security.HashID("other") {
		t.Error("different inputs should hash differently")
	}
}
