package metrics

// The phrase lexicons are closed sets of exact Hebrew substrings. Counting is
// membership per turn per phrase: a phrase appearing in two turns counts
// twice, two different phrases in one turn count twice.

var agreementPhrases = []string{
	"אתה צודק", "את צודקת", "אני מסכים", "אני מסכימה",
	"נכון", "יש בזה משהו", "לא חשבתי על זה",
	"זה נכון", "אתה לא טועה", "יש לך נקודה",
}

var disagreementPhrases = []string{
	"לא מסכים", "לא נכון", "אתה טועה", "את טועה",
	"זה לא מדויק", "אני לא מקבל", "אבל", "לעומת זאת",
	"בניגוד למה ש", "זה שטויות",
}

var empathyPhrases = []string{
	"אני מבין", "אני מבינה", "אני יכול להבין",
	"זה מובן", "אני מרגיש", "אני מרגישה",
	"קשה לי עם", "אני מזדהה", "אני שומע אותך",
}

var sharedIdentityPhrases = []string{
	"כולנו", "אנחנו כעם", "החברה שלנו",
	"המדינה שלנו", "הילדים שלנו", "העתיד שלנו",
	"ביחד", "כישראלים", "המשפחה הישראלית",
}

// emotionMarkers are counted by occurrence, not membership; repeated
// punctuation inside one turn raises the intensity score.
var emotionMarkers = []string{
	"!", "!!", "!!!", "...", "????",
	"מאוד", "ממש", "נורא", "איום", "נפלא",
	"כואב", "קשה", "מפחיד", "מדהים", "מזעזע",
}

// topicKeywords anchor the topic-consistency ratio to the war discourse.
var topicKeywords = []string{
	"עזה", "מלחמה", "חטופים", "חמאס",
	"צבא", "לחימה", "הפסקת אש", "עסקה",
	"ביטחון", "חיילים", "אוקטובר",
}
