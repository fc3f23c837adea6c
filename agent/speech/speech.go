// Package speech adapts Google Cloud Speech-to-Text and Text-to-Speech
// through their REST endpoints, for voice-first conversations.
package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
)

const (
	defaultSTTBaseURL = "https://speech.googleapis.com/v1"
	defaultTTSBaseURL = "https://texttospeech.googleapis.com/v1"
)

type Config struct {
	APIKey     string        `envconfig:"API_KEY" split_words:"true"`
	STTBaseURL string        `envconfig:"STT_BASE_URL" split_words:"true" default:"https://speech.googleapis.com/v1"`
	TTSBaseURL string        `envconfig:"TTS_BASE_URL" split_words:"true" default:"https://texttospeech.googleapis.com/v1"`
	Voice      string        `envconfig:"VOICE" split_words:"true" default:"kn-IN-Standard-A"`
	Timeout    time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// Client implements both sides of the voice contract.
type Client struct {
	apiKey     string
	sttBaseURL string
	ttsBaseURL string
	voice      string
	httpc      *http.Client
}

var (
	_ contractx.Transcriber = (*Client)(nil)
	_ contractx.Synthesizer = (*Client)(nil)
)

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Client) {
		if c != nil {
			s.httpc = c
		}
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	sttBaseURL := strings.TrimRight(strings.TrimSpace(cfg.STTBaseURL), "/")
	if sttBaseURL == "" {
		sttBaseURL = defaultSTTBaseURL
	}
	ttsBaseURL := strings.TrimRight(strings.TrimSpace(cfg.TTSBaseURL), "/")
	if ttsBaseURL == "" {
		ttsBaseURL = defaultTTSBaseURL
	}
	voice := strings.TrimSpace(cfg.Voice)
	if voice == "" {
		voice = "kn-IN-Standard-A"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		sttBaseURL: sttBaseURL,
		ttsBaseURL: ttsBaseURL,
		voice:      voice,
		httpc:      &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type recognizeRequest struct {
	Config recognizeConfig `json:"config"`
	Audio  recognizeAudio  `json:"audio"`
}

type recognizeConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
}

type recognizeAudio struct {
	Content string `json:"content"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

func (c *Client) SpeechToText(ctx context.Context, audio []byte, language string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: speech api key not configured", contractx.ErrCapability)
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: audio payload is empty", contractx.ErrCapability)
	}

	payload := recognizeRequest{
		Config: recognizeConfig{
			Encoding:                   "WEBM_OPUS",
			SampleRateHertz:            48000,
			LanguageCode:               regionCode(language),
			EnableAutomaticPunctuation: true,
		},
		Audio: recognizeAudio{Content: base64.StdEncoding.EncodeToString(audio)},
	}

	var out recognizeResponse
	if err := c.post(ctx, c.sttBaseURL+"/speech:recognize", payload, &out); err != nil {
		return "", err
	}
	if len(out.Results) == 0 || len(out.Results[0].Alternatives) == 0 {
		return "", fmt.Errorf("%w: no transcription results", contractx.ErrCapability)
	}
	return strings.TrimSpace(out.Results[0].Alternatives[0].Transcript), nil
}

type synthesizeRequest struct {
	Input       synthesisInput  `json:"input"`
	Voice       voiceSelection  `json:"voice"`
	AudioConfig ttsAudioConfig  `json:"audioConfig"`
}

type synthesisInput struct {
	Text string `json:"text"`
}

type voiceSelection struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name,omitempty"`
	SSMLGender   string `json:"ssmlGender,omitempty"`
}

type ttsAudioConfig struct {
	AudioEncoding string  `json:"audioEncoding"`
	SpeakingRate  float64 `json:"speakingRate,omitempty"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

func (c *Client) TextToSpeech(ctx context.Context, text string, language string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: speech api key not configured", contractx.ErrCapability)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is empty", contractx.ErrCapability)
	}

	langCode := regionCode(language)
	voice := voiceSelection{LanguageCode: langCode, SSMLGender: "FEMALE"}
	if strings.HasPrefix(c.voice, langCode) {
		voice.Name = c.voice
	}

	payload := synthesizeRequest{
		Input: synthesisInput{Text: text},
		Voice: voice,
		AudioConfig: ttsAudioConfig{
			AudioEncoding: "MP3",
			// Slightly slower for clarity.
			SpeakingRate: 0.9,
		},
	}

	var out synthesizeResponse
	if err := c.post(ctx, c.ttsBaseURL+"/text:synthesize", payload, &out); err != nil {
		return nil, err
	}
	if out.AudioContent == "" {
		return nil, fmt.Errorf("%w: empty synthesis response", contractx.ErrCapability)
	}

	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("%w: decode synthesis audio: %v", contractx.ErrCapability, err)
	}
	return audio, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal speech request: %v", contractx.ErrCapability, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build speech request: %v", contractx.ErrCapability, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: call speech service: %v", contractx.ErrCapability, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: speech service returned status %d", contractx.ErrCapability, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode speech response: %v", contractx.ErrCapability, err)
	}
	return nil
}

// regionCode expands a base language code to the regional code the speech
// APIs expect. Codes already carrying a region pass through.
func regionCode(language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		return "kn-IN"
	}
	if strings.Contains(language, "-") {
		return language
	}
	switch strings.ToLower(language) {
	case "kn":
		return "kn-IN"
	case "hi":
		return "hi-IN"
	case "en":
		return "en-IN"
	default:
		return language + "-IN"
	}
}
