package bot

import (
	"slices"

	"github.com/bwmarrin/discordgo"
)

// Level is a permission level. Higher levels include the lower ones.
type Level int

const (
	LevelInvalid       Level = -1
	LevelRegular       Level = 1
	LevelSupporter     Level = 2
	LevelModerator     Level = 3
	LevelAdministrator Level = 4
	LevelOwner         Level = 5
)

func (l Level) String() string {
	switch l {
	case LevelInvalid:
		return "Invalid"
	case LevelRegular:
		return "Regular"
	case LevelSupporter:
		return "Supporter"
	case LevelModerator:
		return "Moderator"
	case LevelAdministrator:
		return "Administrator"
	case LevelOwner:
		return "Owner"
	default:
		return "Unknown"
	}
}

// PermissionConfig lists the ids that grant elevated levels
type PermissionConfig struct {
	OwnerIDs         []string
	SupporterRoleIDs []string
}

// LevelOf resolves the permission level of the context's author
func (b *Bot) LevelOf(c *Context) Level {
	if c.Author == nil {
		return LevelInvalid
	}
	if slices.Contains(b.perms.OwnerIDs, c.Author.ID) {
		return LevelOwner
	}
	if c.GuildID == "" {
		return LevelRegular
	}

	perms, err := b.session.UserChannelPermissions(c.Author.ID, c.ChannelID)
	if err != nil {
		b.log.Debug().Err(err).Str("user", c.Author.ID).Msg("failed to resolve channel permissions")
	} else {
		switch {
		case perms&discordgo.PermissionAdministrator != 0:
			return LevelAdministrator
		case perms&(discordgo.PermissionManageServer|discordgo.PermissionManageMessages) != 0:
			return LevelModerator
		}
	}

	if len(b.perms.SupporterRoleIDs) > 0 {
		member, err := b.session.GuildMember(c.GuildID, c.Author.ID)
		if err == nil {
			for _, roleID := range member.Roles {
				if slices.Contains(b.perms.SupporterRoleIDs, roleID) {
					return LevelSupporter
				}
			}
		}
	}

	return LevelRegular
}
