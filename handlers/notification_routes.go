package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"faberlic-mining/middleware"
	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

const notificationPollInterval = 2 * time.Second

func SetupNotificationRoutes(api fiber.Router, notificationService *services.NotificationService, authService *services.AuthService, requireUser fiber.Handler) {
	api.Get("/notifications", requireUser, func(c *fiber.Ctx) error {
		list, err := notificationService.List(c.UserContext())
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(list)
	})

	api.Get("/notifications/stream", middleware.SSEAuthMiddleware(authService), func(c *fiber.Ctx) error {
		return streamNotifications(c, notificationService)
	})
}

// streamNotifications pushes global notifications created after the
// connection opened as SSE "notification" events.
func streamNotifications(c *fiber.Ctx, notificationService *services.NotificationService) error {
	userID := middleware.UserID(c)
	feed := notificationService.NewFeed()

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	done := c.Context().Done()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(notificationPollInterval)
		defer ticker.Stop()

		// comment frame as keepalive
		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case <-ticker.C:
				fresh, err := feed.Next(context.Background())
				if err != nil {
					log.WithError(err).WithField("user_id", userID).Warn("SSE notification query failed")
					continue
				}
				if len(fresh) == 0 {
					w.WriteString(":\n\n")
				}
				for _, n := range fresh {
					payload, _ := json.Marshal(n)
					fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload)
				}
				if err := w.Flush(); err != nil {
					// client went away
					return
				}
			case <-done:
				return
			}
		}
	})
	return nil
}
