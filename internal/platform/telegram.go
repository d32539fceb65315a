package platform

import (
	"context"
	"errors"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

var ErrNoInviteLink = errors.New("telegram returned no invite link")

// Telegram implements Client over the Bot API.
type Telegram struct {
	b     *bot.Bot
	botID int64
}

func NewTelegram(ctx context.Context, b *bot.Bot) (*Telegram, error) {
	me, err := b.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	return &Telegram{b: b, botID: me.ID}, nil
}

func (t *Telegram) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := t.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeHTML,
	})
	return err
}

func (t *Telegram) SendMessageButtons(ctx context.Context, chatID int64, text string, kb *tgmodels.InlineKeyboardMarkup) error {
	_, err := t.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   tgmodels.ParseModeHTML,
		ReplyMarkup: kb,
	})
	return err
}

func (t *Telegram) CreateInviteLink(ctx context.Context, chatID int64, expire time.Duration, memberLimit int) (string, error) {
	link, err := t.b.CreateChatInviteLink(ctx, &bot.CreateChatInviteLinkParams{
		ChatID:      chatID,
		ExpireDate:  int(time.Now().Add(expire).Unix()),
		MemberLimit: memberLimit,
	})
	if err != nil {
		return "", err
	}
	if link == nil || link.InviteLink == "" {
		return "", ErrNoInviteLink
	}
	return link.InviteLink, nil
}

func (t *Telegram) IsBotAdmin(ctx context.Context, chatID int64) (bool, error) {
	chat, err := t.b.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err != nil {
		return false, err
	}
	// Private chats and channels have no member list to check against.
	if chat.Type == "private" || chat.Type == "channel" {
		return true, nil
	}

	member, err := t.b.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID,
		UserID: t.botID,
	})
	if err != nil {
		return false, err
	}
	return member.Type == tgmodels.ChatMemberTypeOwner ||
		member.Type == tgmodels.ChatMemberTypeAdministrator, nil
}

func (t *Telegram) BanMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	_, err := t.b.BanChatMember(ctx, &bot.BanChatMemberParams{
		ChatID:    chatID,
		UserID:    userID,
		UntilDate: int(until.Unix()),
	})
	return err
}

func (t *Telegram) UnbanMember(ctx context.Context, chatID, userID int64) error {
	_, err := t.b.UnbanChatMember(ctx, &bot.UnbanChatMemberParams{
		ChatID:       chatID,
		UserID:       userID,
		OnlyIfBanned: true,
	})
	return err
}

func (t *Telegram) MemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	member, err := t.b.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return "", err
	}
	return memberStatusName(member.Type), nil
}

func memberStatusName(t tgmodels.ChatMemberType) string {
	switch t {
	case tgmodels.ChatMemberTypeOwner:
		return "creator"
	case tgmodels.ChatMemberTypeAdministrator:
		return "administrator"
	case tgmodels.ChatMemberTypeMember:
		return "member"
	case tgmodels.ChatMemberTypeRestricted:
		return "restricted"
	case tgmodels.ChatMemberTypeLeft:
		return "left"
	case tgmodels.ChatMemberTypeBanned:
		return "kicked"
	default:
		return "unknown"
	}
}
