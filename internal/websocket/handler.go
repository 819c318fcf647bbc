package websocket

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/queue"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 25 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ProgressSource opens a live stream of one analysis's progress events.
type ProgressSource interface {
	SubscribeAnalysisUpdates(ctx context.Context, analysisID string) (*queue.AnalysisSubscription, error)
}

// Handler relays the worker's per-stage progress events to websocket
// clients. One connection follows one media item's latest analysis.
type Handler struct {
	analysisRepo repositories.AnalysisRepository
	source       ProgressSource
}

func NewHandler(analysisRepo repositories.AnalysisRepository, source ProgressSource) *Handler {
	return &Handler{
		analysisRepo: analysisRepo,
		source:       source,
	}
}

func (h *Handler) Stream(c *gin.Context) {
	mediaID := c.Param("media_id")

	analysis, err := h.analysisRepo.GetLatestAnalysisByMediaID(c.Request.Context(), mediaID)
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No analysis found for this media"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed for media %s: %v", mediaID, err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub, err := h.source.SubscribeAnalysisUpdates(ctx, analysis.ID)
	if err != nil {
		log.Printf("Failed to subscribe to analysis %s: %v", analysis.ID, err)
		return
	}
	defer sub.Close()

	welcome := map[string]interface{}{
		"type":        "connection_established",
		"analysis_id": analysis.ID,
		"status":      analysis.Status,
		"timestamp":   time.Now().Unix(),
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(welcome); err != nil {
		return
	}

	// Reads only detect the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case payload, ok := <-sub.Channel:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream ended"),
					time.Now().Add(2*time.Second),
				)
				return
			}

			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				log.Printf("WebSocket write failed for analysis %s: %v", analysis.ID, err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
