package moderation

import "strings"

// FallbackReason is the generic reason attached to every denylist match.
// Individual matched terms are deliberately not echoed back to the sender.
const FallbackReason = "Message contains inappropriate language"

// defaultTerms is the fixed denylist of profanity, harassment, and self-harm
// terms. Matching is by substring over normalized text.
var defaultTerms = []string{
	"fuck", "shit", "ass", "bitch", "damn", "hell", "bastard", "dick",
	"pussy", "cock", "cunt", "whore", "slut", "nigger", "nigga", "faggot",
	"retard", "idiot", "stupid", "moron", "dumb", "kill yourself", "kys",
	"die", "rape", "stfu", "wtf", "lmfao", "bullshit", "asshole",
	"motherfucker", "fucker", "dumbass", "jackass", "piss", "crap",
	"douche", "wanker", "twat", "prick", "screw you", "go to hell",
	"suck my", "blow me", "eat shit", "piece of shit",
}

// Denylist is the always-available local filter.
type Denylist struct {
	terms []string
}

// NewDenylist creates a Denylist with the default term set.
func NewDenylist() *Denylist {
	return NewDenylistWithTerms(defaultTerms)
}

// NewDenylistWithTerms creates a Denylist with a custom term set. Terms are
// normalized the same way as message text; empty terms are dropped.
func NewDenylistWithTerms(terms []string) *Denylist {
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		n := normalize(t)
		if n != "" {
			normalized = append(normalized, n)
		}
	}
	return &Denylist{terms: normalized}
}

// Check classifies text against the denylist.
func (d *Denylist) Check(text string) Verdict {
	normalized := normalize(text)

	for _, term := range d.terms {
		if strings.Contains(normalized, term) {
			return Verdict{Inappropriate: true, Reason: FallbackReason}
		}
	}

	return Verdict{}
}

// normalize lowercases text and strips everything except letters, digits, and
// spaces, so punctuation cannot be used to slip terms past the filter.
func normalize(text string) string {
	lower := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}
