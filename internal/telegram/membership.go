package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MembershipOracle answers channel-subscription queries through the
// Bot API. The bot must be an admin of each checked channel.
type MembershipOracle struct {
	bot *tgbotapi.BotAPI
}

func NewMembershipOracle(bot *tgbotapi.BotAPI) *MembershipOracle {
	return &MembershipOracle{bot: bot}
}

// IsMember reports whether the user is subscribed to the channel.
// "member", "administrator" and "creator" count as joined; "left",
// "kicked" and "restricted" do not.
func (o *MembershipOracle) IsMember(ctx context.Context, channel string, tgID int64) (bool, error) {
	member, err := o.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: channel,
			UserID:             tgID,
		},
	})
	if err != nil {
		return false, err
	}

	switch member.Status {
	case "member", "administrator", "creator":
		return true, nil
	default:
		return false, nil
	}
}
