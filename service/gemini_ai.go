package service

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/lehoangvu/docchat-be/types"
)

type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    *zap.SugaredLogger
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, log *zap.SugaredLogger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	return &GeminiService{
		client: client,
		model:  model,
		log:    log,
	}, nil
}

func (s *GeminiService) GetChatCompletion(ctx context.Context, userMessage string, history []types.AIMessage, extractedText, fileName string) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == types.AIRoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Parts: []genai.Part{genai.Text(msg.Content)},
			Role:  role,
		})
	}

	chat := s.model.StartChat()
	chat.History = contents

	resp, err := chat.SendMessage(ctx, genai.Text(frameUserMessage(userMessage, extractedText, fileName)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrAIFailure, err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no response generated", types.ErrAIFailure)
	}

	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content += string(text)
			}
		}
	}
	if content == "" {
		return "", fmt.Errorf("%w: empty response", types.ErrAIFailure)
	}
	return content, nil
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}
