package dto

// VoiceSettings overrides the default voice profile of a synthesis path.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// SpeechRequest is the request body of both synthesis endpoints.
type SpeechRequest struct {
	Text                     string         `json:"text"`
	VoiceID                  string         `json:"voice_id,omitempty"`
	ModelID                  string         `json:"model_id,omitempty"`
	OutputFormat             string         `json:"output_format,omitempty"`
	OptimizeStreamingLatency *int           `json:"optimize_streaming_latency,omitempty"`
	VoiceSettings            *VoiceSettings `json:"voice_settings,omitempty"`
}
