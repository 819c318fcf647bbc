package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/ai"
)

type stubChatRepo struct {
	messages []*models.ChatMessage
}

func (r *stubChatRepo) CreateChatMessage(_ context.Context, message *models.ChatMessage) error {
	message.ID = fmt.Sprintf("chat-%d", len(r.messages)+1)
	r.messages = append(r.messages, message)
	return nil
}

func (r *stubChatRepo) GetChatHistory(_ context.Context, mediaID string) ([]*models.ChatMessage, error) {
	history := []*models.ChatMessage{}
	for _, msg := range r.messages {
		if msg.MediaID == mediaID {
			history = append(history, msg)
		}
	}
	return history, nil
}

func (r *stubChatRepo) GetInsights(_ context.Context, mediaID string) (*models.ChatMessage, error) {
	for _, msg := range r.messages {
		if msg.MediaID == mediaID && msg.UserType == models.ChatRoleInsights {
			return msg, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *stubChatRepo) countByRole(role models.ChatRole) int {
	count := 0
	for _, msg := range r.messages {
		if msg.UserType == role {
			count++
		}
	}
	return count
}

type stubCompleter struct {
	reply        string
	err          error
	conversation []ai.Message
}

func (c *stubCompleter) Complete(_ context.Context, messages []ai.Message) (string, error) {
	c.conversation = messages
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func newChatFixture(withAnalysis bool) (*stubChatRepo, *stubCompleter, ChatService) {
	chatRepo := &stubChatRepo{}
	analysisRepo := &stubAnalysisRepo{}
	if withAnalysis {
		meta, _ := json.Marshal(models.StructuredAnalysis{
			VideoTitle: "Weekly sync",
			Summary:    "The team agreed to ship the beta in September.",
		})
		analysisRepo.latest = &models.Analysis{
			ID:      "analysis-1",
			MediaID: "media-1",
			Status:  models.AnalysisStatusDone,
			Meta:    meta,
		}
	}
	mediaRepo := &stubMediaRepo{media: &models.Media{ID: "media-1", UserID: "user-1", Type: models.MediaTypeVideo}}
	completer := &stubCompleter{reply: "Hi, I'm the MeetingIQ Pro assistant. The beta ships in September."}
	return chatRepo, completer, NewChatService(chatRepo, analysisRepo, mediaRepo, completer)
}

func TestSendMessageSeedsInsightsAndStoresTurn(t *testing.T) {
	chatRepo, completer, svc := newChatFixture(true)

	resp, err := svc.SendMessage(context.Background(), "media-1", "When does the beta ship?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Response != completer.reply {
		t.Errorf("response = %q", resp.Response)
	}

	if got := chatRepo.countByRole(models.ChatRoleUser); got != 1 {
		t.Errorf("stored %d user messages, want 1", got)
	}
	if got := chatRepo.countByRole(models.ChatRoleInsights); got != 1 {
		t.Errorf("stored %d insights messages, want 1", got)
	}
	if got := chatRepo.countByRole(models.ChatRoleAssistant); got != 1 {
		t.Errorf("stored %d assistant messages, want 1", got)
	}

	if len(completer.conversation) != 3 {
		t.Fatalf("conversation has %d messages, want 3", len(completer.conversation))
	}
	if completer.conversation[0].Role != "system" {
		t.Errorf("first message role = %q, want system", completer.conversation[0].Role)
	}
	if completer.conversation[1].Role != "system" || completer.conversation[1].Content != "Meeting insights: The team agreed to ship the beta in September." {
		t.Errorf("insights turn = %+v", completer.conversation[1])
	}
	if completer.conversation[2].Role != "user" || completer.conversation[2].Content != "When does the beta ship?" {
		t.Errorf("user turn = %+v", completer.conversation[2])
	}
}

func TestSendMessageSeedsInsightsOnlyOnce(t *testing.T) {
	chatRepo, completer, svc := newChatFixture(true)

	if _, err := svc.SendMessage(context.Background(), "media-1", "First question"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendMessage(context.Background(), "media-1", "Second question"); err != nil {
		t.Fatal(err)
	}

	if got := chatRepo.countByRole(models.ChatRoleInsights); got != 1 {
		t.Errorf("stored %d insights messages after two turns, want 1", got)
	}

	// system prompt + insights + user/assistant/user
	roles := make([]string, len(completer.conversation))
	for i, msg := range completer.conversation {
		roles[i] = msg.Role
	}
	want := []string{"system", "system", "user", "assistant", "user"}
	if len(roles) != len(want) {
		t.Fatalf("conversation roles = %v, want %v", roles, want)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Errorf("role[%d] = %q, want %q", i, roles[i], want[i])
		}
	}
}

func TestSendMessageWithoutAnalysis(t *testing.T) {
	chatRepo, completer, svc := newChatFixture(false)

	if _, err := svc.SendMessage(context.Background(), "media-1", "Hello"); err != nil {
		t.Fatalf("chat without a completed analysis should still work: %v", err)
	}
	if got := chatRepo.countByRole(models.ChatRoleInsights); got != 0 {
		t.Errorf("stored %d insights messages, want 0", got)
	}
	if len(completer.conversation) != 2 {
		t.Errorf("conversation has %d messages, want 2", len(completer.conversation))
	}
}

func TestSendMessageCompletionFailure(t *testing.T) {
	chatRepo, completer, svc := newChatFixture(true)
	completer.err = fmt.Errorf("rate limit exceeded")

	if _, err := svc.SendMessage(context.Background(), "media-1", "Hello"); err == nil {
		t.Fatal("expected error")
	}
	if got := chatRepo.countByRole(models.ChatRoleAssistant); got != 0 {
		t.Errorf("stored %d assistant messages after a failed completion, want 0", got)
	}
}

func TestSendMessageUnknownMedia(t *testing.T) {
	chatRepo := &stubChatRepo{}
	svc := NewChatService(chatRepo, &stubAnalysisRepo{}, &stubMediaRepo{}, &stubCompleter{})

	if _, err := svc.SendMessage(context.Background(), "media-1", "Hello"); err == nil {
		t.Fatal("expected error for unknown media")
	}
	if len(chatRepo.messages) != 0 {
		t.Error("no message should be stored for unknown media")
	}
}
