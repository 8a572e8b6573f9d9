package adapter

// DashScope replies with {"output":{"text":...}} on success and may carry
// only "code" and "message" when a call fails.

// DashScopeRequest is the body POSTed to the text-generation endpoint.
type DashScopeRequest struct {
	Model string         `json:"model"`
	Input DashScopeInput `json:"input"`
}

// DashScopeInput carries the raw prompt.
type DashScopeInput struct {
	Prompt string `json:"prompt"`
}

func newDashScopeRequest(model, prompt string) DashScopeRequest {
	return DashScopeRequest{
		Model: model,
		Input: DashScopeInput{Prompt: prompt},
	}
}
