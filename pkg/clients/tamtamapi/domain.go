package tamtamapi

import (
	"regexp"
)

const (
	// tamtam rejects messages of 10000 characters or more
	maxMessageLength = 9999
)

var (
	urlRegex     = regexp.MustCompile(`(https?://[^\s]+)`)
	nonWordRegex = regexp.MustCompile(`[^\w_]+`)
)

// MessageRequest is the body posted to the tamtam message api
type MessageRequest struct {
	Token string `json:"token"`
	Text  string `json:"text"`
	Name  string `json:"name"`
}

// MessageResponse is returned by the tamtam message api
type MessageResponse struct {
	Result string `json:"result"`
}

// WrapLinks replaces every url in the message with a markdown link labeled details
func WrapLinks(message string) string {
	return urlRegex.ReplaceAllString(message, "[details]($1)")
}

// Tagify replaces every run of non-word characters with an underscore
func Tagify(tag string) string {
	return nonWordRegex.ReplaceAllString(tag, "_")
}

func truncate(message string) string {
	runes := []rune(message)
	if len(runes) <= maxMessageLength {
		return message
	}

	return string(runes[:maxMessageLength])
}
