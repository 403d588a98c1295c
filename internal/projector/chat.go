package projector

import (
	"strings"

	"github.com/blackwell-systems/journalwatch/internal/store"
)

// ClassifyChat derives a chat subtype from the sender and channel. Rules are
// checked in order and matched case-insensitively:
//
//	sender contains "security" or "system defence"  -> sec
//	sender contains "pirate" or "wing"              -> pirate
//	channel is "system" or "local"                  -> system
//	channel is "squadron"                           -> sq
//	channel is "friend"                             -> friends
//	anything else                                   -> other
func ClassifyChat(sender, channel string) string {
	sender = strings.ToLower(sender)
	channel = strings.ToLower(channel)

	switch {
	case strings.Contains(sender, "security"), strings.Contains(sender, "system defence"):
		return store.ChatSecurity
	case strings.Contains(sender, "pirate"), strings.Contains(sender, "wing"):
		return store.ChatPirate
	case channel == "system", channel == "local":
		return store.ChatSystem
	case channel == "squadron":
		return store.ChatSquadron
	case channel == "friend":
		return store.ChatFriends
	default:
		return store.ChatOther
	}
}
