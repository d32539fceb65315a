// Package platform wraps the chat-platform operations the billing core
// depends on, so the lifecycle manager and the sweep can be exercised
// against fakes.
package platform

import (
	"context"
	"time"

	tgmodels "github.com/go-telegram/bot/models"
)

type Client interface {
	// SendMessage delivers a plain HTML-formatted notification.
	SendMessage(ctx context.Context, chatID int64, text string) error
	// SendMessageButtons delivers a notification with an inline keyboard.
	SendMessageButtons(ctx context.Context, chatID int64, text string, kb *tgmodels.InlineKeyboardMarkup) error
	// CreateInviteLink issues a single-use, time-limited join credential.
	CreateInviteLink(ctx context.Context, chatID int64, expire time.Duration, memberLimit int) (string, error)
	// IsBotAdmin reports whether the bot holds admin rights in the chat.
	IsBotAdmin(ctx context.Context, chatID int64) (bool, error)
	// BanMember temporarily bans a user; platforms require a ban rather
	// than a plain kick to remove a member.
	BanMember(ctx context.Context, chatID, userID int64, until time.Time) error
	UnbanMember(ctx context.Context, chatID, userID int64) error
	// MemberStatus returns the user's membership state in the chat.
	MemberStatus(ctx context.Context, chatID, userID int64) (string, error)
}
