package analyzer

import (
	"context"
	"fmt"
	"log"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
)

// MessageSender delivers one message to one contact address.
type MessageSender interface {
	Send(ctx context.Context, message, phoneNumber string) error
}

// WhatsAppNotifier tells a user their analysis is ready. Everything in
// here is best-effort: lookup or delivery failures are logged and
// swallowed, never surfaced to the pipeline.
type WhatsAppNotifier struct {
	users  repositories.UserRepository
	sender MessageSender
}

func NewWhatsAppNotifier(users repositories.UserRepository, sender MessageSender) *WhatsAppNotifier {
	return &WhatsAppNotifier{users: users, sender: sender}
}

func (n *WhatsAppNotifier) NotifyAnalysisComplete(ctx context.Context, userID, title string) {
	user, err := n.users.GetUserByID(ctx, userID)
	if err != nil {
		log.Printf("Notification skipped, user %s lookup failed: %v", userID, err)
		return
	}

	if !user.NotificationActive || user.PhoneNumber == nil || *user.PhoneNumber == "" {
		return
	}

	message := fmt.Sprintf("Your meeting analysis is ready! 🎉\n\n%s\n\nOpen MeetingIQ Pro to view the full breakdown.", title)
	if err := n.sender.Send(ctx, message, *user.PhoneNumber); err != nil {
		log.Printf("Failed to send completion notification to user %s: %v", userID, err)
	}
}
