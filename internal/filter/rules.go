package filter

import (
	"strings"
	"time"

	"github.com/sells-group/edhtail/internal/model"
)

// Ability markers matched against oracle text.
var (
	partnerMarkers          = []string{"partner with", "partner", "friends forever"}
	backgroundMarker        = "choose a background"
	companionMarker         = "companion"
	doctorsCompanionMarkers = []string{"doctor's companion", "doctor’s companion"}
)

// Rules is the set of independently togglable exclusion rules. Rules are
// AND-combined: a card survives only if it passes every enabled rule, so
// evaluation order affects cost, never the survivor set.
type Rules struct {
	ExcludeFunny            bool
	ExcludePartner          bool
	ExcludeBackground       bool
	ExcludeCompanion        bool
	ExcludeDoctorsCompanion bool
	ExcludeVanilla          bool
	ExcludeRecent           bool
	RecentDays              int
	ExcludePTK              bool
	PTKStrict               bool
	ExcludeDoctors          bool

	// StrictConcurrency bounds the printings sub-fetches in strict mode,
	// independently of the deck-count fetch pool.
	StrictConcurrency int

	// Now supplies the reference time for the recency window. Defaults to
	// time.Now when nil.
	Now func() time.Time
}

func (r Rules) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// isFunnySet reports whether the representative printing came from a
// silver-border / playtest style set.
func isFunnySet(c model.Card) bool {
	return c.SetType == "funny"
}

func hasPartner(c model.Card) bool {
	text := strings.ToLower(c.OracleText)
	for _, m := range partnerMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func hasBackgroundAbility(c model.Card) bool {
	return strings.Contains(strings.ToLower(c.OracleText), backgroundMarker)
}

func hasCompanion(c model.Card) bool {
	return strings.Contains(strings.ToLower(c.OracleText), companionMarker)
}

func hasDoctorsCompanion(c model.Card) bool {
	text := strings.ToLower(c.OracleText)
	for _, m := range doctorsCompanionMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// isVanilla reports whether the card has no rules text. Keyworded cards carry
// their keywords in oracle text, so they never count as vanilla.
func isVanilla(c model.Card) bool {
	return strings.TrimSpace(c.OracleText) == ""
}

// isRecent reports whether the representative printing was released within
// the last days from now. days <= 0 disables the rule entirely: it never
// excludes, regardless of any release date on the card.
func isRecent(c model.Card, days int, now time.Time) bool {
	if days <= 0 {
		return false
	}
	rel, ok := c.ReleaseDate()
	if !ok {
		return false
	}
	return now.UTC().Sub(rel) <= time.Duration(days)*24*time.Hour
}

// isDoctor matches the Doctors themselves: any Doctor Who set (promos
// included) with Time Lord in the type line, to avoid false positives.
func isDoctor(c model.Card) bool {
	return strings.Contains(strings.ToLower(c.SetName), "doctor who") &&
		strings.Contains(strings.ToLower(c.TypeLine), "time lord")
}

// looksLikePTK is the fast Portal Three Kingdoms heuristic: it checks only
// the representative printing, so it can miss later reprints.
func looksLikePTK(c model.Card) bool {
	return strings.EqualFold(c.SetCode, "ptk") ||
		strings.Contains(strings.ToLower(c.SetName), "portal three kingdoms")
}

// passesSync runs the cheap, pure stage-1 predicates, cheapest first with
// per-card short-circuit. The PTK rule is handled by the caller.
func (r Rules) passesSync(c model.Card, now time.Time) bool {
	switch {
	case r.ExcludeFunny && isFunnySet(c):
		return false
	case r.ExcludeVanilla && isVanilla(c):
		return false
	case r.ExcludeDoctors && isDoctor(c):
		return false
	case r.ExcludeRecent && isRecent(c, r.RecentDays, now):
		return false
	case r.ExcludePartner && hasPartner(c):
		return false
	case r.ExcludeBackground && hasBackgroundAbility(c):
		return false
	case r.ExcludeCompanion && hasCompanion(c):
		return false
	case r.ExcludeDoctorsCompanion && hasDoctorsCompanion(c):
		return false
	}
	return true
}
