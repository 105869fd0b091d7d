package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			now := time.Now()

			rqID := uuid.NewString()
			c.Set("rqID", rqID)

			attrs := []any{slog.String("rqID", rqID)}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chatID", chat.ID))
			}
			if cb := c.Callback(); cb != nil {
				attrs = append(attrs, slog.String("callback", cb.Unique))
			} else {
				attrs = append(attrs, slog.String("text", c.Text()))
			}
			slog.Info("start request", attrs...)

			err := next(c)

			slog.Info(
				"request finished",
				slog.String("rqID", rqID),
				slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
			)

			return err
		}
	}
}

// OwnerOnly drops every update that does not come from the owner's chat.
func OwnerOnly(ownerChatID int64) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat == nil || chat.ID != ownerChatID {
				var chatID int64
				if chat != nil {
					chatID = chat.ID
				}
				rqID, _ := c.Get("rqID").(string)
				slog.Warn("update from foreign chat ignored", slog.String("rqID", rqID), slog.Int64("chatID", chatID))
				return nil
			}
			return next(c)
		}
	}
}
