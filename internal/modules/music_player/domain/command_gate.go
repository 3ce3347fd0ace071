package domain

import "github.com/disgoorg/snowflake/v2"

// IsPrivileged reports whether a user in userVoiceChannelID may change the
// playback of session. A zero channel ID means the user is not in voice.
func IsPrivileged(userVoiceChannelID snowflake.ID, session *Session) bool {
	if session == nil || userVoiceChannelID == 0 {
		return false
	}
	return session.VoiceChannelID() == userVoiceChannelID
}
