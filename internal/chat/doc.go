// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat contains the session manager driving the exchange lifecycle.
//
// An exchange is one user command plus its eventual assistant reply. The
// manager classifies each command (some are handled on-device: navigation,
// alarms, text messages), dispatches the rest to the remote assistant,
// assembles the streamed or buffered response, throttles placeholder
// refreshes to one per sync interval, extracts the server's suggested session
// title from the finished text, and commits the completed exchange to the
// repository in exactly one batched write. Exchanges are strictly sequential;
// sending a new command supersedes the one in flight, and superseded
// transport callbacks are discarded by generation checks.
package chat
