package service

import (
	"context"

	"github.com/lehoangvu/docchat-be/types"
)

const systemPrompt = "You are a helpful assistant that answers questions about " +
	"documents the user has uploaded. Ground your answers in the extracted " +
	"document text when it is provided, and say so when the document does not " +
	"contain the answer."

// AIService produces the assistant reply for a chat turn. history is the
// prior turns oldest first; extractedText and fileName are set when the
// current turn carries a document, and the implementation frames the user
// message with them so the model sees the document content.
type AIService interface {
	GetChatCompletion(ctx context.Context, userMessage string, history []types.AIMessage, extractedText, fileName string) (string, error)
}

func frameUserMessage(userMessage, extractedText, fileName string) string {
	if extractedText == "" {
		return userMessage
	}
	framed := "The user uploaded a document"
	if fileName != "" {
		framed += " named \"" + fileName + "\""
	}
	framed += ". Its extracted text follows:\n\n" + extractedText + "\n\n"
	if userMessage != "" {
		framed += "User message: " + userMessage
	} else {
		framed += "Summarize the document for the user."
	}
	return framed
}
