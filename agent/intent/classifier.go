// Package intent decides which capability a user utterance asks for.
// The default implementation is a keyword matcher over fixed word lists in
// English, Hindi and Kannada; it is deliberately behind an interface so a
// real NLU model can replace it without touching the router.
package intent

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Intent string

const (
	IntentMarket    Intent = "market"
	IntentScheme    Intent = "scheme"
	IntentWeather   Intent = "weather"
	IntentDiagnosis Intent = "diagnosis"
	IntentGeneral   Intent = "general"
)

type Result struct {
	Intent    Intent
	Commodity string // set for IntentMarket only
}

type Classifier interface {
	Classify(text string) Result
	Affirmative(text string) bool
}

// DefaultCommodity is returned when a market query names no known crop.
const DefaultCommodity = "rice"

// KeywordClassifier matches case-insensitive substrings against fixed
// vocabulary lists. Evaluation order is the routing priority: market wins
// over scheme, scheme over weather, weather over diagnosis.
type KeywordClassifier struct {
	market    []string
	scheme    []string
	weather   []string
	diagnosis []string
	crops     []cropAlias
	yes       []string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		market: []string{
			"price", "rate", "market", "mandi", "sell",
			"भाव", "कीमत", "मंडी", "दाम", "बाजार",
			"ಬೆಲೆ", "ಮಾರುಕಟ್ಟೆ", "ದರ", "ಮಂಡಿ",
		},
		scheme: []string{
			"scheme", "subsidy", "pm kisan", "pm-kisan", "pmkisan", "yojana", "loan waiver", "insurance",
			"योजना", "सब्सिडी", "अनुदान", "बीमा",
			"ಯೋಜನೆ", "ಅನುದಾನ", "ಸಬ್ಸಿಡಿ", "ವಿಮೆ",
		},
		weather: []string{
			"weather", "rain", "forecast", "temperature", "humidity", "monsoon",
			"मौसम", "बारिश", "तापमान",
			"ಹವಾಮಾನ", "ಮಳೆ", "ತಾಪಮಾನ",
		},
		diagnosis: []string{
			"disease", "sick", "pest", "infection", "fungus", "spots", "wilting", "dying", "leaves turning",
			"रोग", "बीमार", "कीट", "फफूंद",
			"ರೋಗ", "ಕೀಟ", "ಹುಳ", "ಶಿಲೀಂಧ್ರ",
		},
		crops: []cropAlias{
			{"tomato", "tomato"}, {"टमाटर", "tomato"}, {"ಟೊಮೇಟೊ", "tomato"},
			{"onion", "onion"}, {"प्याज", "onion"}, {"ಈರುಳ್ಳಿ", "onion"},
			{"rice", "rice"}, {"paddy", "rice"}, {"चावल", "rice"}, {"धान", "rice"}, {"ಅಕ್ಕಿ", "rice"}, {"ಭತ್ತ", "rice"},
			{"wheat", "wheat"}, {"गेहूं", "wheat"}, {"ಗೋಧಿ", "wheat"},
			{"potato", "potato"}, {"आलू", "potato"}, {"ಆಲೂಗಡ್ಡೆ", "potato"},
			{"chilli", "chili"}, {"chili", "chili"}, {"मिर्च", "chili"}, {"ಮೆಣಸಿನಕಾಯಿ", "chili"},
			{"maize", "maize"}, {"corn", "maize"}, {"मक्का", "maize"}, {"ಮೆಕ್ಕೆಜೋಳ", "maize"},
			{"cotton", "cotton"}, {"कपास", "cotton"}, {"ಹತ್ತಿ", "cotton"},
			{"sugarcane", "sugarcane"}, {"गन्ना", "sugarcane"}, {"ಕಬ್ಬು", "sugarcane"},
		},
		yes: []string{
			"yes", "yeah", "yep", "ok", "okay", "sure", "please", "go ahead", "continue",
			"हाँ", "हां", "जी", "ठीक",
			"ಹೌದು", "ಸರಿ", "ಆಯ್ತು",
		},
	}
}

func (c *KeywordClassifier) Classify(text string) Result {
	lowered := strings.ToLower(text)

	switch {
	case matchesAny(lowered, c.market):
		return Result{Intent: IntentMarket, Commodity: c.commodity(lowered)}
	case matchesAny(lowered, c.scheme):
		return Result{Intent: IntentScheme}
	case matchesAny(lowered, c.weather):
		return Result{Intent: IntentWeather}
	case matchesAny(lowered, c.diagnosis):
		return Result{Intent: IntentDiagnosis}
	default:
		return Result{Intent: IntentGeneral}
	}
}

func (c *KeywordClassifier) Affirmative(text string) bool {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return false
	}
	return matchesAny(lowered, c.yes)
}

type cropAlias struct {
	alias     string
	canonical string
}

// commodity extracts the first known crop named in the utterance;
// best-effort, falls back to DefaultCommodity. Aliases match on word
// boundaries: "rice" must not match inside "price".
func (c *KeywordClassifier) commodity(lowered string) string {
	for _, crop := range c.crops {
		if containsWord(lowered, crop.alias) {
			return crop.canonical
		}
	}
	return DefaultCommodity
}

func containsWord(lowered, word string) bool {
	for offset := 0; ; {
		i := strings.Index(lowered[offset:], word)
		if i < 0 {
			return false
		}
		i += offset
		if !letterBefore(lowered, i) && !letterAt(lowered, i+len(word)) {
			return true
		}
		offset = i + 1
	}
}

func letterBefore(s string, idx int) bool {
	if idx == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func letterAt(s string, idx int) bool {
	if idx >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[idx:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func matchesAny(lowered string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lowered, w) {
			return true
		}
	}
	return false
}
