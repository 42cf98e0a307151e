package security

import "regexp"

const (
	RuleEmail  = "email"
	RulePhone  = "phone"
	RuleSocial = "social"
	RuleURL    = "url"
)

const (
	MsgEmail  = "email addresses are not allowed in this field."
	MsgPhone  = "phone numbers are not allowed in this field."
	MsgSocial = "social media handles or other contact information are not allowed in this field."
	MsgURL    = "links are not allowed in this field."
)

var (
	emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	// Thai numbers: 081-234-5678, 0812345678, +66812345678
	phonePattern = regexp.MustCompile(`(?:\+66|0)\d{1,2}-?\d{3,4}-?\d{4}`)
	lineKeywords = regexp.MustCompile(`(?i)line(\s*id)?|ไลน์(\s*ไอดี)?`)
	socialWords  = regexp.MustCompile(`(?i)line(\s*id)?|ไลน์(\s*ไอดี)?|facebook|เฟซ|ig|ไอจี|tel|เบอร์`)
	// \S alone is ASCII-only; Unicode spaces (NBSP, U+3000, BOM...) also end a link
	urlPattern   = regexp.MustCompile(`https?://[^\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)
)

// Rule pairs a pattern with the reason reported when it matches.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Message string
}

// Ruleset is an ordered, immutable list of rules. The first matching rule wins.
type Ruleset struct {
	name  string
	rules []Rule
}

// NewRuleset builds a ruleset from rules in evaluation order.
func NewRuleset(name string, rules ...Rule) Ruleset {
	rs := make([]Rule, len(rules))
	copy(rs, rules)
	return Ruleset{name: name, rules: rs}
}

func (rs Ruleset) Name() string { return rs.name }

// Rules returns a copy of the rules in evaluation order.
func (rs Ruleset) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Classify runs text through the ruleset.
func (rs Ruleset) Classify(text string) ValidationResult {
	return Classify(text, rs)
}

var (
	// NarrowRuleset gates job descriptions: only LINE is treated as a contact keyword.
	NarrowRuleset = NewRuleset("narrow",
		Rule{Name: RuleEmail, Pattern: emailPattern, Message: MsgEmail},
		Rule{Name: RulePhone, Pattern: phonePattern, Message: MsgPhone},
		Rule{Name: RuleSocial, Pattern: lineKeywords, Message: MsgSocial},
		Rule{Name: RuleURL, Pattern: urlPattern, Message: MsgURL},
	)

	// BroadRuleset gates comments.
	BroadRuleset = NewRuleset("broad",
		Rule{Name: RuleEmail, Pattern: emailPattern, Message: MsgEmail},
		Rule{Name: RulePhone, Pattern: phonePattern, Message: MsgPhone},
		Rule{Name: RuleSocial, Pattern: socialWords, Message: MsgSocial},
		Rule{Name: RuleURL, Pattern: urlPattern, Message: MsgURL},
	)
)

// ValidationResult contains the classification outcome. Rule and Message are
// empty when Valid is true.
type ValidationResult struct {
	Valid   bool
	Rule    string
	Message string
}

// Classify checks text for contact information. It has no side effects and
// is safe for concurrent use.
func Classify(text string, rs Ruleset) ValidationResult {
	if text == "" {
		return ValidationResult{Valid: true}
	}
	for _, r := range rs.rules {
		if r.Pattern != nil && r.Pattern.MatchString(text) {
			return ValidationResult{Valid: false, Rule: r.Name, Message: r.Message}
		}
	}
	return ValidationResult{Valid: true}
}

// Field kinds subject to the contact policy.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldComment     = "comment"
)

// RulesetFor picks the ruleset applied to a form field. Unknown fields get the
// broad ruleset.
func RulesetFor(field string) Ruleset {
	switch field {
	case FieldTitle, FieldDescription:
		return NarrowRuleset
	default:
		return BroadRuleset
	}
}

// RulesetByName resolves "narrow" or "broad".
func RulesetByName(name string) (Ruleset, bool) {
	switch name {
	case NarrowRuleset.name:
		return NarrowRuleset, true
	case BroadRuleset.name:
		return BroadRuleset, true
	}
	return Ruleset{}, false
}
