// Package models contains data types and constants shared by the chat
// front-end, its backend client and the development server.
package models

// Endpoints and defaults for the chat backend
const (
	// EndpointChat is the path of the chat exchange endpoint.
	EndpointChat = "/api/chat"
	// EndpointHealth is the liveness endpoint of the development server.
	EndpointHealth = "/api/health"

	DefaultBackendURL = "http://localhost:8080"
)

// Fixed user-facing strings
const (
	// ErrorReply is appended as a bot message whenever an exchange fails.
	ErrorReply = "Sorry, I encountered an error."

	// ThinkingText is the transient placeholder shown while a reply is pending.
	ThinkingText = "Gemini is thinking..."

	// AssistantName labels bot messages.
	AssistantName = "Gemini"
)

// DefaultHeaders returns the headers sent with every chat request.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "geminichat",
	}
}
