// Package chat adapts the Twitch IRC client to the connection shape the
// safety session needs: negotiate capabilities, join, observe ROOMSTATE,
// send commands and leave.
//
// The bot logs in as the channel owner with a chat token (chat:read and
// chat:edit scopes, plus moderator rights implied by ownership).
package chat
