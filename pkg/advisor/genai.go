package advisor

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultGenAIModel = "gemini-2.5-flash"

// GenAIClient sends chats to Google's Gemini API
type GenAIClient struct {
	client *genai.Client
	model  string
}

// NewGenAIClient creates a GenAIClient
func NewGenAIClient(ctx context.Context, apiKey, model string) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	return newGenAIClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

func newGenAIClient(ctx context.Context, cc *genai.ClientConfig, model string) (*GenAIClient, error) {
	if model == "" {
		model = DefaultGenAIModel
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIClient{client: client, model: model}, nil
}

// Chat generates a single reply for messages
func (c *GenAIClient) Chat(ctx context.Context, messages []Message) (string, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("genai request failed: %w", err)
	}

	return resp.Text(), nil
}

// Name returns the backend name
func (c *GenAIClient) Name() string {
	return fmt.Sprintf("genai:%s", c.model)
}
