package bot

import (
	"fmt"
	"time"

	"github.com/ferret9/worklogbot/internal/worklog"
)

const (
	slashCommandSignInDescription    = "Start your work session."
	slashCommandSignOutDescription   = "End your work session."
	slashCommandBreakDescription     = "Take a break from your work session."
	slashCommandBackDescription      = "Return from your break."
	slashCommandTimeDescription      = "Show how long you have worked in this session."
	slashCommandUpdateDescription    = "Post a status update about what you are working on."
	slashCommandSyncRolesDescription = "Sync status roles for all tracked members."

	optionSummaryDescription = "What you accomplished this session."
	optionReasonDescription  = "Why you are taking a break."
	optionMessageDescription = "What you are working on."

	messageEphemeralWrongGuild      = ":warning: **This command cannot be used in this server.**"
	messageEphemeralUnknownCommand  = ":warning: **Unknown command.**"
	messageEphemeralNotPermitted    = ":warning: **You are not allowed to use this command.**"
	messageEphemeralCommandFailed   = ":warning: **Something went wrong. Please try again.**"
	messageEphemeralAlreadySignedIn = ":warning: **You already have an active work session. Use /signout to end it first.**"
	messageEphemeralNoActiveSession = ":warning: **You don't have an active work session. Use /signin to start one.**"
	messageEphemeralAlreadyOnBreak  = ":warning: **You are already on break. Use /back to return first.**"
	messageEphemeralNotOnBreak      = ":warning: **You are not on break.**"
	messageEphemeralMessageRequired = ":warning: **Please include a message with your update.**"

	messageUpdateReminder = "Time for a status update! Use /update to share what you are working on."

	clockTimeLayout = "3:04 PM"
)

func signInReply(startTime time.Time, loc *time.Location) string {
	return fmt.Sprintf(":white_check_mark: **Signed in at %s. Have a productive day!**", startTime.In(loc).Format(clockTimeLayout))
}

func signOutReply(workMinutes, breakMinutes int) string {
	return fmt.Sprintf(":wave: **Signed out. You worked %s with %s of breaks. See you tomorrow!**",
		worklog.FormatMinutes(workMinutes), worklog.FormatMinutes(breakMinutes))
}

func breakReply(reason string) string {
	return fmt.Sprintf(":coffee: **Enjoy your break!**\n-# Reason: %s", reason)
}

func backReply(breakSeconds int64) string {
	return fmt.Sprintf(":muscle: **Welcome back! You were on break for %s.**", worklog.FormatSeconds(breakSeconds))
}

func timeReply(info worklog.DurationInfo) string {
	return fmt.Sprintf(":stopwatch: **You have worked %s so far** (%s of breaks).",
		worklog.FormatSeconds(info.WorkSeconds), worklog.FormatSeconds(info.BreakSeconds))
}

func updateReply() string {
	return ":white_check_mark: **Update recorded.**"
}

func syncRolesReply(count int) string {
	return fmt.Sprintf(":arrows_counterclockwise: **Synced roles for %d member(s).**", count)
}

func updatePost(displayName, text string) string {
	return fmt.Sprintf(":memo: **%s**: %s", displayName, text)
}

func teamSignInPost(displayName string) string {
	return fmt.Sprintf(":green_circle: **%s** has signed in.", displayName)
}

func teamSignOutPost(displayName string, workMinutes int) string {
	return fmt.Sprintf(":red_circle: **%s** has signed out after %s.", displayName, worklog.FormatMinutes(workMinutes))
}

func voiceJoinedPost(userID, channelID string) string {
	return fmt.Sprintf(":loud_sound: <@%s> joined <#%s>.", userID, channelID)
}

func voiceLeftPost(userID, channelID string) string {
	return fmt.Sprintf(":mute: <@%s> left <#%s>.", userID, channelID)
}

func logChannelSignIn(startTime time.Time, loc *time.Location) string {
	return fmt.Sprintf(":white_check_mark: Signed in at %s.", startTime.In(loc).Format(clockTimeLayout))
}

func logChannelSignOut(workMinutes, breakMinutes int, summary string) string {
	msg := fmt.Sprintf(":wave: Signed out. Worked %s, breaks %s.",
		worklog.FormatMinutes(workMinutes), worklog.FormatMinutes(breakMinutes))
	if summary != "" {
		msg += "\nSummary: " + summary
	}
	return msg
}

func logChannelBreak(reason string) string {
	return ":coffee: On break. Reason: " + reason
}

func logChannelBack(minutes int) string {
	return fmt.Sprintf(":muscle: Back from break after %s.", worklog.FormatMinutes(minutes))
}
