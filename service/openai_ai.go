package service

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lehoangvu/docchat-be/types"
)

type OpenAIService struct {
	client *openai.Client
	model  string
	log    *zap.SugaredLogger
}

func NewOpenAIService(baseURL, apiKey, model string, log *zap.SugaredLogger) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL // OpenAI-compatible local servers work too
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIService{
		client: client,
		model:  model,
		log:    log,
	}
}

func (s *OpenAIService) GetChatCompletion(ctx context.Context, userMessage string, history []types.AIMessage, extractedText, fileName string) (string, error) {
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == types.AIRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: frameUserMessage(userMessage, extractedText, fileName),
	})

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages: openaiMessages,
			Model:    s.model,
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrAIFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response generated", types.ErrAIFailure)
	}
	return resp.Choices[0].Message.Content, nil
}
