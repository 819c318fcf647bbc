package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/ai"
)

const chatSystemPrompt = "You are the MeetingIQ Pro assistant who answers questions about a meeting's insights, always in under 50 words. Introduce yourself as the MeetingIQ Pro assistant."

// ChatService runs the per-media conversation over a completed
// analysis. The first message seeds the thread with the analysis
// summary so the assistant has the meeting context.
type ChatService interface {
	SendMessage(ctx context.Context, mediaID, message string) (*ChatResponse, error)
	GetHistory(ctx context.Context, mediaID string) ([]*models.ChatMessage, error)
}

// ChatCompleter produces one assistant reply for a conversation.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []ai.Message) (string, error)
}

type ChatResponse struct {
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

type chatService struct {
	chatRepo     repositories.ChatRepository
	analysisRepo repositories.AnalysisRepository
	mediaRepo    repositories.MediaRepository
	completer    ChatCompleter
}

func NewChatService(chatRepo repositories.ChatRepository, analysisRepo repositories.AnalysisRepository, mediaRepo repositories.MediaRepository, completer ChatCompleter) ChatService {
	return &chatService{
		chatRepo:     chatRepo,
		analysisRepo: analysisRepo,
		mediaRepo:    mediaRepo,
		completer:    completer,
	}
}

func (s *chatService) SendMessage(ctx context.Context, mediaID, message string) (*ChatResponse, error) {
	if _, err := s.mediaRepo.GetMediaByID(ctx, mediaID); err != nil {
		return nil, fmt.Errorf("media lookup failed: %w", err)
	}

	userMessage := &models.ChatMessage{
		MediaID:  mediaID,
		UserType: models.ChatRoleUser,
		Message:  message,
	}
	if err := s.chatRepo.CreateChatMessage(ctx, userMessage); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}

	if err := s.seedInsights(ctx, mediaID); err != nil {
		return nil, err
	}

	history, err := s.chatRepo.GetChatHistory(ctx, mediaID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	reply, err := s.completer.Complete(ctx, buildConversation(history))
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	assistantMessage := &models.ChatMessage{
		MediaID:  mediaID,
		UserType: models.ChatRoleAssistant,
		Message:  reply,
	}
	if err := s.chatRepo.CreateChatMessage(ctx, assistantMessage); err != nil {
		return nil, fmt.Errorf("failed to store assistant message: %w", err)
	}

	return &ChatResponse{Response: reply, CreatedAt: assistantMessage.CreatedAt}, nil
}

func (s *chatService) GetHistory(ctx context.Context, mediaID string) ([]*models.ChatMessage, error) {
	history, err := s.chatRepo.GetChatHistory(ctx, mediaID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	return history, nil
}

// seedInsights stores the analysis summary as a one-time insights
// message. A media item without a completed analysis simply chats
// without seeded context.
func (s *chatService) seedInsights(ctx context.Context, mediaID string) error {
	_, err := s.chatRepo.GetInsights(ctx, mediaID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check insights: %w", err)
	}

	analysis, err := s.analysisRepo.GetLatestAnalysisByMediaID(ctx, mediaID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("analysis lookup failed: %w", err)
	}
	if analysis.Status != models.AnalysisStatusDone || analysis.Meta == nil {
		return nil
	}

	var result models.StructuredAnalysis
	if err := json.Unmarshal(analysis.Meta, &result); err != nil || result.Summary == "" {
		return nil
	}

	insights := &models.ChatMessage{
		MediaID:  mediaID,
		UserType: models.ChatRoleInsights,
		Message:  result.Summary,
	}
	if err := s.chatRepo.CreateChatMessage(ctx, insights); err != nil {
		return fmt.Errorf("failed to seed insights: %w", err)
	}
	return nil
}

func buildConversation(history []*models.ChatMessage) []ai.Message {
	messages := []ai.Message{{Role: "system", Content: chatSystemPrompt}}

	for _, msg := range history {
		switch msg.UserType {
		case models.ChatRoleInsights:
			messages = append(messages, ai.Message{Role: "system", Content: "Meeting insights: " + msg.Message})
		case models.ChatRoleAssistant:
			messages = append(messages, ai.Message{Role: "assistant", Content: msg.Message})
		default:
			messages = append(messages, ai.Message{Role: "user", Content: msg.Message})
		}
	}

	return messages
}
