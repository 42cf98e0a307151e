package security

import (
	"fmt"
	"strings"
)

// DataMasker hides author contact details in public responses
type DataMasker struct {
	enabled bool
}

func NewDataMasker(enabled bool) *DataMasker {
	return &DataMasker{enabled: enabled}
}

func (m *DataMasker) Enabled() bool {
	return m != nil && m.enabled
}

// MaskContact masks an email and an optional phone number. Empty values stay empty.
func (m *DataMasker) MaskContact(email, phone string) (string, string) {
	if !m.Enabled() {
		return email, phone
	}
	if email != "" {
		email = MaskEmail(email)
	}
	if phone != "" {
		phone = MaskPhone(phone)
	}
	return email, phone
}

// MaskEmail: "john.doe@example.com" → "jo***@***.com"
func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***"
	}
	local := parts[0]
	domain := parts[1]

	visible := 2
	if len(local) < visible {
		visible = len(local)
	}
	maskedLocal := local[:visible] + "***"

	domainParts := strings.Split(domain, ".")
	ext := domainParts[len(domainParts)-1]
	return fmt.Sprintf("%s@***.%s", maskedLocal, ext)
}

// MaskPhone: "081-234-5678" → "***-***-5678"
func MaskPhone(phone string) string {
	var digits strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	d := digits.String()
	if len(d) < 4 {
		return "***-***-****"
	}
	return fmt.Sprintf("***-***-%s", d[len(d)-4:])
}
