// File: services/assistant/intent.go
package assistant

import (
	"regexp"
	"strings"

	"medichat/models"
)

// IntentKind tags the resolved intent variant.
type IntentKind int

const (
	IntentUnrecognized IntentKind = iota
	IntentCheckAvailability
	IntentBook
	IntentCancel
	IntentView
	IntentConfirm
	IntentDecline
)

// Intent is the structured result of resolving one utterance. Doctor names
// are normalized to lower case and dates to DD-MM-YYYY before they are
// attached here. Missing lists the required fields the utterance lacked;
// a non-empty Missing makes the intent a guidance response, not an action.
type Intent struct {
	Kind      IntentKind
	Doctor    string
	Date      string
	SlotIndex int    // 1-based slot ordinal as uttered
	Reference string // appointment letter; empty on IntentCancel means "show the list"
	Missing   []string
}

var (
	dateRe      = regexp.MustCompile(`(\d{2}-\d{2}-\d{4})`)
	slotRe      = regexp.MustCompile(`slot\s*(\d+)`)
	// Whitespace before the reference is required so the trailing "s" of
	// "appointments" never reads as a letter reference.
	cancelRefRe = regexp.MustCompile(`appointment\s+(?:#\s*|number\s+)?([a-z]\b|\d+)`)

	// Booking utterances carry the doctor in one of three shapes:
	// "doctor: name (specialization)", "dr. name" or "doctor name". The
	// name runs non-greedily up to a parenthetical, a date, the slot
	// ordinal, the word "on", or the end of the utterance.
	bookDoctorRes = []*regexp.Regexp{
		regexp.MustCompile(`doctor:\s*([a-z][a-z ]*?)\s*(?:\(|\d{2}-\d{2}-\d{4}|\bslot\b|\bon\b|$)`),
		regexp.MustCompile(`dr\.?\s+([a-z][a-z ]*?)\s*(?:\(|\d{2}-\d{2}-\d{4}|\bslot\b|\bon\b|$)`),
		regexp.MustCompile(`doctor\s+([a-z][a-z ]*?)\s*(?:\(|\d{2}-\d{2}-\d{4}|\bslot\b|\bon\b|$)`),
	}

	// Availability utterances stop the name before " on" or a date token.
	availDoctorRes = []*regexp.Regexp{
		regexp.MustCompile(`dr\.?\s+([a-z][a-z ]*?)(?:\s+on\b|\s+\d{2}-\d{2}-\d{4}|\s*$)`),
		regexp.MustCompile(`doctor\s+([a-z][a-z ]*?)(?:\s+on\b|\s+\d{2}-\d{2}-\d{4}|\s*$)`),
	}
)

var (
	confirmWords = []string{"yes", "confirm", "proceed"}
	declineWords = []string{"no", "cancel", "abort"}
	bookingWords = []string{"book", "schedule", "appointment"}
	doctorWords  = []string{"slot", "dr.", "doctor"}
	checkWords   = []string{"check", "availability", "available"}
	availDoctors = []string{"dr.", "doctor"}
	viewPhrases  = []string{"my appointments", "show appointments", "view appointments"}
)

// Resolve classifies an utterance into an Intent. Rules are ordered and the
// first match wins; in particular "cancel"+"appointment" is a cancellation
// flow and must be tested before the bare decline keywords, and the decline
// keywords before the booking keywords (which include "appointment").
// Resolution is pure: it reads the context but never mutates it or any store.
func Resolve(utterance string, sc *models.SessionContext) Intent {
	lower := strings.ToLower(utterance)

	switch {
	case strings.Contains(lower, "cancel") && strings.Contains(lower, "appointment"):
		return resolveCancel(lower)
	case containsAny(lower, confirmWords):
		return Intent{Kind: IntentConfirm}
	case containsAny(lower, declineWords):
		return Intent{Kind: IntentDecline}
	case containsAny(lower, bookingWords) && containsAny(lower, doctorWords):
		return resolveBook(lower)
	case containsAny(lower, checkWords) && containsAny(lower, availDoctors):
		return resolveCheckAvailability(lower)
	case containsAny(lower, viewPhrases):
		return Intent{Kind: IntentView}
	default:
		return Intent{Kind: IntentUnrecognized}
	}
}

func resolveCancel(lower string) Intent {
	m := cancelRefRe.FindStringSubmatch(lower)
	if m == nil {
		// No reference; the executor shows the letter-indexed list.
		return Intent{Kind: IntentCancel}
	}
	ref := m[1]
	if ref[0] >= '0' && ref[0] <= '9' {
		// Ordinal reference: "#2" / "number 2" / "2" selects letter 'b'.
		n := 0
		for _, r := range ref {
			n = n*10 + int(r-'0')
		}
		if n < 1 || n > 26 {
			return Intent{Kind: IntentCancel}
		}
		ref = string(rune('a' + n - 1))
	}
	return Intent{Kind: IntentCancel, Reference: ref}
}

func resolveBook(lower string) Intent {
	it := Intent{Kind: IntentBook}

	if name, ok := matchFirst(bookDoctorRes, lower); ok {
		it.Doctor = normalizeName(name)
	} else {
		it.Missing = append(it.Missing, "doctor name")
	}
	if m := dateRe.FindStringSubmatch(lower); m != nil {
		it.Date = m[1]
	} else {
		it.Missing = append(it.Missing, "date")
	}
	if m := slotRe.FindStringSubmatch(lower); m != nil {
		n := 0
		for _, r := range m[1] {
			n = n*10 + int(r-'0')
		}
		it.SlotIndex = n
	} else {
		it.Missing = append(it.Missing, "slot number")
	}
	return it
}

func resolveCheckAvailability(lower string) Intent {
	it := Intent{Kind: IntentCheckAvailability}

	if name, ok := matchFirst(availDoctorRes, lower); ok {
		it.Doctor = normalizeName(name)
	} else {
		it.Missing = append(it.Missing, "doctor name")
	}
	if m := dateRe.FindStringSubmatch(lower); m != nil {
		it.Date = m[1]
	} else {
		it.Missing = append(it.Missing, "date")
	}
	return it
}

func matchFirst(res []*regexp.Regexp, s string) (string, bool) {
	for _, re := range res {
		if m := re.FindStringSubmatch(s); m != nil && strings.TrimSpace(m[1]) != "" {
			return m[1], true
		}
	}
	return "", false
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
