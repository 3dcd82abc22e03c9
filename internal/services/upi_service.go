package services

import (
	"net/url"
	"strings"

	"github.com/neopaysim/backend/internal/models"
)

// UPIRejectCode discriminates why a scanned payload was refused. A NOT_UPI
// reject means the string was never a UPI URI at all; every other code is a
// validation failure on a well-formed UPI URI.
type UPIRejectCode string

const (
	RejectNone                UPIRejectCode = ""
	RejectNotUPI              UPIRejectCode = "NOT_UPI"
	RejectMissingPayee        UPIRejectCode = "MISSING_PAYEE"
	RejectMissingPayeeName    UPIRejectCode = "MISSING_PAYEE_NAME"
	RejectUnsupportedCurrency UPIRejectCode = "UNSUPPORTED_CURRENCY"
	RejectInvalidAmount       UPIRejectCode = "INVALID_AMOUNT"
)

// ParsedUPI is the discriminated result of parsing a scanned payment URI.
// When HasAmount is false the payer supplies the amount and it stays
// editable; when true the amount is fixed by the payee.
type ParsedUPI struct {
	VPA          string        `json:"vpa"`
	Name         string        `json:"name"`
	Amount       int64         `json:"amount"` // paise, meaningful only when HasAmount
	HasAmount    bool          `json:"has_amount"`
	Currency     string        `json:"currency"`
	Note         string        `json:"note,omitempty"`
	MerchantCode string        `json:"merchant_code,omitempty"`
	IsMerchant   bool          `json:"is_merchant"`
	Reference    string        `json:"reference,omitempty"`
	Provider     string        `json:"provider,omitempty"`
	IsValid      bool          `json:"is_valid"`
	Reject       UPIRejectCode `json:"reject_code,omitempty"`
}

// pspProviders maps payee address domain substrings to a human-readable
// payment service provider label. Order matters: app handles are matched
// before plain bank domains.
var pspProviders = []struct {
	Substr string
	Label  string
}{
	{"okhdfcbank", "Google Pay"},
	{"okicici", "Google Pay"},
	{"okaxis", "Google Pay"},
	{"oksbi", "Google Pay"},
	{"ybl", "PhonePe"},
	{"ibl", "PhonePe"},
	{"axl", "PhonePe"},
	{"apl", "Amazon Pay"},
	{"yapl", "Amazon Pay"},
	{"paytm", "Paytm"},
	{"ptyes", "Paytm"},
	{"ptaxis", "Paytm"},
	{"freecharge", "Freecharge"},
	{"hdfcbank", "HDFC Bank"},
	{"icici", "ICICI Bank"},
	{"axisbank", "Axis Bank"},
	{"sbi", "State Bank of India"},
	{"kotak", "Kotak Mahindra Bank"},
	{"barodampay", "Bank of Baroda"},
	{"upi", "BHIM"},
}

const defaultProvider = "UPI"

// ParseUPIURI turns a scanned or uploaded URI string into a validated
// payment intent. It never returns an error value: malformed input yields
// an invalid result with a typed reject code, so nothing downstream can
// move money on a bad payload. The function is pure; parsing the same
// input twice yields identical results.
func ParseUPIURI(raw string) ParsedUPI {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !strings.EqualFold(u.Scheme, "upi") || !strings.EqualFold(u.Host, "pay") {
		return ParsedUPI{Reject: RejectNotUPI}
	}

	params := u.Query()
	result := ParsedUPI{
		VPA:          params.Get("pa"),
		Name:         params.Get("pn"),
		Currency:     "INR",
		Note:         params.Get("tn"),
		MerchantCode: params.Get("mc"),
		Reference:    params.Get("tr"),
	}
	result.IsMerchant = result.MerchantCode != ""

	if result.VPA == "" {
		result.Reject = RejectMissingPayee
		return result
	}
	if result.Name == "" {
		result.Reject = RejectMissingPayeeName
		return result
	}

	if cu := params.Get("cu"); cu != "" {
		if !strings.EqualFold(cu, "INR") {
			result.Reject = RejectUnsupportedCurrency
			return result
		}
	}

	if am := params.Get("am"); am != "" {
		paise, err := models.ParsePaise(am)
		if err != nil {
			result.Reject = RejectInvalidAmount
			return result
		}
		result.Amount = paise
		result.HasAmount = true
	}

	result.Provider = detectProvider(result.VPA)
	result.IsValid = true
	return result
}

// detectProvider extracts the domain after "@" in the payee address and
// matches it against the fixed provider table.
func detectProvider(vpa string) string {
	at := strings.LastIndex(vpa, "@")
	if at < 0 || at == len(vpa)-1 {
		return defaultProvider
	}
	domain := strings.ToLower(vpa[at+1:])

	for _, p := range pspProviders {
		if strings.Contains(domain, p.Substr) {
			return p.Label
		}
	}
	return defaultProvider
}

// BuildUPIURI renders a collect-payment URI for the given payee, the
// inverse of ParseUPIURI. A zero amount leaves am unset so the payer
// chooses the amount.
func BuildUPIURI(vpa, name string, amount int64, note string) string {
	params := url.Values{}
	params.Set("pa", vpa)
	params.Set("pn", name)
	if amount > 0 {
		params.Set("am", models.FormatPaise(amount))
	}
	params.Set("cu", "INR")
	if note != "" {
		params.Set("tn", note)
	}
	return "upi://pay?" + params.Encode()
}
