package adapter

// OpenRouter uses the OpenAI chat-completions wire format.

// OpenRouterRequest is the body POSTed to the chat-completions endpoint.
type OpenRouterRequest struct {
	// Model is the namespaced model id, e.g. "deepseek/deepseek-chat-v3-0324:free".
	Model string `json:"model"`

	// Messages contains the conversation; PromptPal sends a single user turn.
	Messages []OpenRouterMessage `json:"messages"`
}

// OpenRouterMessage represents a single message in the conversation.
type OpenRouterMessage struct {
	// Role is one of: "system", "user", "assistant".
	Role string `json:"role"`

	// Content is the message text content.
	Content string `json:"content"`
}

func newOpenRouterRequest(model, prompt string) OpenRouterRequest {
	return OpenRouterRequest{
		Model: model,
		Messages: []OpenRouterMessage{
			{Role: "user", Content: prompt},
		},
	}
}
