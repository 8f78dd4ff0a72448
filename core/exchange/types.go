package exchange

// Request is a single utterance sent to the remote assistant endpoint.
// Text is required unless AudioEncoded carries a recorded utterance, in
// which case Text is the generic fallback used by services that need one.
type Request struct {
	Text         string `json:"text"`
	Language     string `json:"language"`
	AudioEncoded string `json:"audio,omitempty"`
	AudioFormat  string `json:"audioFormat,omitempty"`
}

// ResponseData carries structured side-effect payloads of a reply.
type ResponseData struct {
	Destination string `json:"destination,omitempty"`
}

// Response is the remote assistant's reply to one Request.
//
// At most one of the audio fields is honored by the caller; the response
// router picks them in the order AudioBinary, AudioBase64, AudioURL and
// falls back to speaking Response when none is present.
type Response struct {
	Success       bool          `json:"success"`
	Response      string        `json:"response,omitempty"`
	Action        string        `json:"action,omitempty"`
	Data          *ResponseData `json:"data,omitempty"`
	AudioBinary   []byte        `json:"audioBinary,omitempty"`
	AudioMIMEType string        `json:"audioMimeType,omitempty"`
	AudioBase64   string        `json:"audioBase64,omitempty"`
	AudioURL      string        `json:"audioUrl,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// Destination returns the navigation destination, if the reply carries one.
func (r *Response) Destination() string {
	if r == nil || r.Data == nil {
		return ""
	}
	return r.Data.Destination
}
