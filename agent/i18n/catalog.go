// Package i18n holds the user-facing message catalog, keyed by message id
// and language. Control flow never branches on language; callers resolve
// text through Render only.
package i18n

import (
	"fmt"
	"strings"
)

type Language string

const (
	English Language = "en"
	Hindi   Language = "hi"
	Kannada Language = "kn"
)

// DefaultLanguage is used when a profile carries no usable language code.
const DefaultLanguage = English

type MessageID string

const (
	MsgApology         MessageID = "apology"
	MsgAskImage        MessageID = "ask_image"
	MsgAskPlantName    MessageID = "ask_plant_name"
	MsgAskSymptoms     MessageID = "ask_symptoms"
	MsgAskPesticides   MessageID = "ask_pesticides"
	MsgDiagnosisReady  MessageID = "diagnosis_ready"
	MsgConfirmRepeat   MessageID = "confirm_repeat"
	MsgTreatmentIntro  MessageID = "treatment_intro"
	MsgPreventionIntro MessageID = "prevention_intro"
	MsgGeneralAdvice   MessageID = "general_advice"
	MsgMarketReport    MessageID = "market_report"
	MsgSchemeReport    MessageID = "scheme_report"
	MsgWeatherReport   MessageID = "weather_report"
)

// Normalize maps a profile language code (possibly a BCP-47 tag like
// "kn-IN") onto a supported catalog language, defaulting to English.
func Normalize(code string) Language {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	switch Language(code) {
	case Hindi:
		return Hindi
	case Kannada:
		return Kannada
	default:
		return English
	}
}

// Render resolves a message and applies fmt arguments. Unknown ids render
// as the apology in the requested language so a missing catalog entry can
// never surface a raw message id to a farmer.
func Render(id MessageID, lang Language, args ...any) string {
	byLang, ok := catalog[id]
	if !ok {
		byLang = catalog[MsgApology]
	}
	tpl, ok := byLang[lang]
	if !ok {
		tpl = byLang[DefaultLanguage]
	}
	if len(args) == 0 {
		return tpl
	}
	return fmt.Sprintf(tpl, args...)
}

var catalog = map[MessageID]map[Language]string{
	MsgApology: {
		English: "Sorry, something went wrong on our side. Please try again in a moment.",
		Hindi:   "क्षमा करें, तकनीकी समस्या आई है। कृपया थोड़ी देर बाद फिर प्रयास करें।",
		Kannada: "ಕ್ಷಮಿಸಿ, ತಾಂತ್ರಿಕ ಸಮಸ್ಯೆ ಇದೆ. ದಯವಿಟ್ಟು ಮತ್ತೆ ಪ್ರಯತ್ನಿಸಿ.",
	},
	MsgAskImage: {
		English: "To diagnose your plant, please share a clear photo of the affected leaves or stem.",
		Hindi:   "पौधे की जांच के लिए कृपया प्रभावित पत्तियों या तने की साफ तस्वीर भेजें।",
		Kannada: "ನಿಮ್ಮ ಸಸ್ಯವನ್ನು ಪರೀಕ್ಷಿಸಲು, ದಯವಿಟ್ಟು ಬಾಧಿತ ಎಲೆ ಅಥವಾ ಕಾಂಡದ ಸ್ಪಷ್ಟ ಫೋಟೋ ಕಳುಹಿಸಿ.",
	},
	MsgAskPlantName: {
		English: "Thanks for the photo. First, which plant or crop is this?",
		Hindi:   "तस्वीर के लिए धन्यवाद। सबसे पहले, यह कौन सा पौधा या फसल है?",
		Kannada: "ಫೋಟೋಗೆ ಧನ್ಯವಾದ. ಮೊದಲು, ಇದು ಯಾವ ಸಸ್ಯ ಅಥವಾ ಬೆಳೆ?",
	},
	MsgAskSymptoms: {
		English: "What symptoms have you noticed, like spots, wilting or discoloration?",
		Hindi:   "आपने कौन से लक्षण देखे हैं, जैसे धब्बे, मुरझाना या रंग बदलना?",
		Kannada: "ನೀವು ಯಾವ ಲಕ್ಷಣಗಳನ್ನು ಗಮನಿಸಿದ್ದೀರಿ, ಉದಾ. ಕಲೆ, ಬಾಡುವಿಕೆ ಅಥವಾ ಬಣ್ಣ ಬದಲಾವಣೆ?",
	},
	MsgAskPesticides: {
		English: "Have you already used any pesticides or treatments on this crop?",
		Hindi:   "क्या आपने इस फसल पर कोई कीटनाशक या उपचार पहले से किया है?",
		Kannada: "ಈ ಬೆಳೆಗೆ ನೀವು ಈಗಾಗಲೇ ಯಾವುದಾದರೂ ಕೀಟನಾಶಕ ಬಳಸಿದ್ದೀರಾ?",
	},
	MsgDiagnosisReady: {
		English: "I've checked the image and details. It looks like your plant is dealing with %s. Shall I walk you through the treatment steps?",
		Hindi:   "मैंने तस्वीर और जानकारी देख ली है। लगता है आपके पौधे को %s हुआ है। क्या मैं उपचार के चरण बताऊं?",
		Kannada: "ನಾನು ಚಿತ್ರ ಮತ್ತು ವಿವರಗಳನ್ನು ಪರಿಶೀಲಿಸಿದ್ದೇನೆ. ನಿಮ್ಮ ಸಸ್ಯಕ್ಕೆ %s ಆಗಿರುವಂತೆ ಕಾಣುತ್ತದೆ. ಚಿಕಿತ್ಸೆಯ ಹಂತಗಳನ್ನು ವಿವರಿಸಲೇ?",
	},
	MsgConfirmRepeat: {
		English: "The diagnosis is %s. Just say yes when you want me to explain the treatment plan.",
		Hindi:   "निदान %s है। जब आप उपचार योजना जानना चाहें, बस हाँ कहें।",
		Kannada: "ರೋಗನಿರ್ಣಯ %s. ಚಿಕಿತ್ಸಾ ಯೋಜನೆ ಬೇಕಾದಾಗ ಹೌದು ಎಂದು ಹೇಳಿ.",
	},
	MsgTreatmentIntro: {
		English: "Let's get this sorted. To treat it: %s.",
		Hindi:   "चलिए इसे ठीक करते हैं। उपचार के लिए: %s।",
		Kannada: "ಇದನ್ನು ಸರಿಪಡಿಸೋಣ. ಚಿಕಿತ್ಸೆಗಾಗಿ: %s.",
	},
	MsgPreventionIntro: {
		English: "And to stop it coming back: %s.",
		Hindi:   "और इसे दोबारा होने से रोकने के लिए: %s।",
		Kannada: "ಮತ್ತು ಮತ್ತೆ ಬರದಂತೆ ತಡೆಯಲು: %s.",
	},
	MsgGeneralAdvice: {
		English: "I can help with plant disease diagnosis, market prices, government schemes and weather. Tell me what you need, or send a photo of a sick plant.",
		Hindi:   "मैं पौधों की बीमारी, मंडी भाव, सरकारी योजनाओं और मौसम में मदद कर सकता हूं। बताइए क्या चाहिए, या बीमार पौधे की तस्वीर भेजिए।",
		Kannada: "ಸಸ್ಯ ರೋಗ, ಮಾರುಕಟ್ಟೆ ಬೆಲೆ, ಸರ್ಕಾರಿ ಯೋಜನೆ ಮತ್ತು ಹವಾಮಾನದ ಬಗ್ಗೆ ನಾನು ಸಹಾಯ ಮಾಡಬಲ್ಲೆ. ಏನು ಬೇಕು ಹೇಳಿ, ಅಥವಾ ರೋಗಪೀಡಿತ ಸಸ್ಯದ ಫೋಟೋ ಕಳುಹಿಸಿ.",
	},
	MsgMarketReport: {
		English: "Today's price for %s at %s is ₹%d per quintal (%+.1f%% vs last week). %s",
		Hindi:   "%s का आज का भाव %s मंडी में ₹%d प्रति क्विंटल है (पिछले हफ्ते से %+.1f%%)। %s",
		Kannada: "%s ಗೆ ಇಂದಿನ ಬೆಲೆ %s ಮಂಡಿಯಲ್ಲಿ ಪ್ರತಿ ಕ್ವಿಂಟಾಲ್‌ಗೆ ₹%d (ಕಳೆದ ವಾರಕ್ಕಿಂತ %+.1f%%). %s",
	},
	MsgSchemeReport: {
		English: "The most relevant scheme is %s: %s",
		Hindi:   "सबसे उपयुक्त योजना %s है: %s",
		Kannada: "ಅತ್ಯಂತ ಸೂಕ್ತ ಯೋಜನೆ %s: %s",
	},
	MsgWeatherReport: {
		English: "%s",
		Hindi:   "%s",
		Kannada: "%s",
	},
}
