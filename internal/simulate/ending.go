package simulate

import "strings"

// closingPhrases is the closed Hebrew lexicon that signals a natural ending
// once the conversation is past the natural-ending minimum.
var closingPhrases = []string{
	"תודה על השיחה",
	"היה מעניין",
	"נחמד שדיברנו",
	"אני צריך ללכת",
	"בוא נסיים",
	"נסכים שלא נסכים",
}

// subjectClosings are the acknowledgment lines appended on a non-hard-limit
// ending; the simulator picks one at random.
var subjectClosings = []string{
	"תודה על השיחה",
	"היה מעניין לשמוע אותך",
	"נתת לי על מה לחשוב",
	"טוב, נחמד שדיברנו",
	"אני צריך לעכל את זה",
}

// containsClosingPhrase reports whether text carries any closing-lexicon
// phrase as an exact substring.
func containsClosingPhrase(text string) bool {
	for _, p := range closingPhrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// shouldEnd applies the ending policy after every appended turn; first match
// wins. The hard ceiling is absolute and overrides all other signals.
func (s *Simulator) shouldEnd(c *Conversation) (bool, EndReason) {
	n := len(c.Turns)

	if n >= s.cfg.HardLimit {
		return true, EndHardLimit
	}
	if n >= s.cfg.NaturalMin && containsClosingPhrase(c.lastText()) {
		return true, EndNatural
	}
	if n >= s.cfg.SoftMin && s.rng.Float64() < s.cfg.SoftProbability {
		return true, EndSoft
	}
	return false, ""
}
