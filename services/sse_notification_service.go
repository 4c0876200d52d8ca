package services

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"aethex-api/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StreamNotificationsSSE pushes the caller's new notifications as they are
// written. The stream polls with a created_at cursor.
func (s *NotificationService) StreamNotificationsSSE(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return fiber.ErrUnauthorized
	}
	done := c.Context().Done()

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		s.pumpNotifications(done, w, userID)
	})
	return nil
}

// pumpNotifications writes notification frames to w until done closes or a
// flush fails because the client went away.
func (s *NotificationService) pumpNotifications(done <-chan struct{}, w *bufio.Writer, userID string) {
	ctx := context.Background()
	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	cursor := s.Now()
	var latest models.Notification
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").First(&latest).Error; err == nil {
		cursor = latest.CreatedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("⚠️ [SSE] init error for user %s: %v", userID, err)
	}

	w.WriteString(":\n\n")
	if err := w.Flush(); err != nil {
		return
	}

	for {
		select {
		case <-ticker.C:
			fresh, err := s.Since(ctx, userID, cursor)
			if err != nil {
				log.Printf("⚠️ [SSE] query error for user %s: %v", userID, err)
				continue
			}
			if len(fresh) == 0 {
				// keepalive so dead clients surface on Flush
				w.WriteString(":\n\n")
			} else {
				cursor = fresh[len(fresh)-1].CreatedAt
				for _, n := range fresh {
					payload, _ := json.Marshal(n)
					fmt.Fprintf(w, "id: %s\nevent: notification\ndata: %s\n\n", n.ID, payload)
				}
			}
			if err := w.Flush(); err != nil {
				log.Printf("🔌 [SSE] client for user %s disconnected", userID)
				return
			}
		case <-done:
			return
		}
	}
}
