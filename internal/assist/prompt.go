// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assist orchestrates responses: live API when configured, local
// synthesizer otherwise.
package assist

// DefaultSystemPrompt is prepended to every live request. It is fixed for
// the life of a session; the transcript itself never stores it.
const DefaultSystemPrompt = `You are SousChef, a practical meal-planning assistant.

Help the user plan meals, build grocery lists, and adapt recipes to their
household size, dietary restrictions, and budget. Ask a clarifying question
when household details are missing. Keep answers concise and format them in
Markdown.`
