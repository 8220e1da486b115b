package domain

// KeywordQuery tells keyword sources what to fetch.
type KeywordQuery struct {
	Product  string
	Topic    string
	Locale   string
	FilePath string
	MaxRows  int
}

// ChatMessage is one message of a chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a single blocking completion call.
type ChatRequest struct {
	Messages    []ChatMessage
	Temperature float64
	JSONMode    bool
}

// TokenUsage reports tokens consumed by one completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse carries the first choice content and usage.
type ChatResponse struct {
	Content string
	Usage   TokenUsage
}
