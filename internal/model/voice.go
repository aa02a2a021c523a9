package model

// VoiceSession is the configuration handed to the patient app to start a
// voice-assistant conversation. The assistant provider itself is an
// external collaborator; we only bootstrap the session.
type VoiceSession struct {
	AssistantID  string `json:"assistant_id"`
	SessionToken string `json:"session_token"`
	BaseURL      string `json:"base_url"`
	ExpiresIn    int    `json:"expires_in"`
}
