// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud implements the chat-completion API client.
//
// The client speaks the OpenAI-compatible chat completions protocol: one
// POST per submission carrying the entire conversation, with a Bearer
// credential, fixed temperature and token ceiling, and no streaming.
// Transient failures retry with exponential backoff; the credential is
// never logged, only its SHA-256 fingerprint.
//
// # Usage
//
//	client := cloud.NewClient(apiKey).WithModel("gpt-4o-mini")
//	text, err := client.Chat(ctx, []cloud.ChatMessage{
//	    cloud.NewSystemMessage(systemPrompt),
//	    cloud.NewUserMessage("plan my week"),
//	})
//
// An error from Chat carries the upstream error.message when the API
// supplied one, so the UI can surface it verbatim.
package cloud
