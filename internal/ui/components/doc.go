// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the souschef TUI.

Components are styled with Lip Gloss and owned by the Bubble Tea update
loop that embeds them; none of them start goroutines or hold locks.

# Status Line

StatusLine (statusline.go) is the transient one-line notice surface at
the bottom of the screen. Every Set schedules its own expiry command
stamped with a sequence number, so a newer message cancels an older
expiry implicitly: the stale timer fires, presents the old sequence
number, and is ignored.

	status := components.NewStatusLine()
	cmd := status.Warn("offline reply; the live request failed")
	// later, in Update:
	case components.StatusExpireMsg:
		status.Expire(msg)
*/
package components
