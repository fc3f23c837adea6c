package intent

import "testing"

func TestClassifyPriorityOrder(t *testing.T) {
	t.Parallel()

	c := NewKeywordClassifier()

	cases := []struct {
		name string
		text string
		want Intent
	}{
		{"market english", "what is the tomato price today", IntentMarket},
		{"market kannada", "ಟೊಮೇಟೊ ಬೆಲೆ ಎಷ್ಟು", IntentMarket},
		{"market hindi", "प्याज का भाव बताओ", IntentMarket},
		{"scheme english", "any subsidy for drip irrigation", IntentScheme},
		{"scheme hindi", "किसान योजना के बारे में बताओ", IntentScheme},
		{"weather", "will it rain tomorrow", IntentWeather},
		{"diagnosis", "my plant has yellow spots and is wilting", IntentDiagnosis},
		{"general", "hello, how are you", IntentGeneral},
		// market wins when both market and scheme words appear
		{"market over scheme", "what price will I get under the pm kisan scheme", IntentMarket},
		// scheme wins over diagnosis words
		{"scheme over diagnosis", "is there a scheme for pest control", IntentScheme},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := c.Classify(tc.text); got.Intent != tc.want {
				t.Errorf("Classify(%q).Intent = %s, want %s", tc.text, got.Intent, tc.want)
			}
		})
	}
}

func TestClassifyExtractsCommodity(t *testing.T) {
	t.Parallel()

	c := NewKeywordClassifier()

	cases := []struct {
		text string
		want string
	}{
		{"tomato price in hubli", "tomato"},
		{"ಈರುಳ್ಳಿ ಬೆಲೆ", "onion"},
		{"what do I get for paddy at the mandi", "rice"},
		{"chilli rate today", "chili"},
		{"market price please", DefaultCommodity},
		// "rice" is a substring of "price"; only a whole-word mention counts
		{"wheat price today", "wheat"},
		{"potato price in hubli", "potato"},
		{"cotton price", "cotton"},
		{"rice price at the mandi", "rice"},
	}

	for _, tc := range cases {
		got := c.Classify(tc.text)
		if got.Intent != IntentMarket {
			t.Errorf("Classify(%q).Intent = %s, want market", tc.text, got.Intent)
			continue
		}
		if got.Commodity != tc.want {
			t.Errorf("Classify(%q).Commodity = %q, want %q", tc.text, got.Commodity, tc.want)
		}
	}
}

func TestCommoditySetOnlyForMarket(t *testing.T) {
	t.Parallel()

	c := NewKeywordClassifier()
	got := c.Classify("my tomato plant looks sick")
	if got.Intent != IntentDiagnosis {
		t.Fatalf("Intent = %s, want diagnosis", got.Intent)
	}
	if got.Commodity != "" {
		t.Fatalf("Commodity = %q, want empty outside market intent", got.Commodity)
	}
}

func TestAffirmative(t *testing.T) {
	t.Parallel()

	c := NewKeywordClassifier()

	yes := []string{"yes", "Yes please", "ok go ahead", "ಹೌದು", "हाँ", "sure"}
	for _, text := range yes {
		if !c.Affirmative(text) {
			t.Errorf("Affirmative(%q) = false, want true", text)
		}
	}

	no := []string{"", "   ", "no", "not now", "what is the diagnosis"}
	for _, text := range no {
		if c.Affirmative(text) {
			t.Errorf("Affirmative(%q) = true, want false", text)
		}
	}
}
