// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the chatline TUI.
//
// All colors use Lip Gloss AdaptiveColor so the palette adjusts to light
// and dark terminals automatically. A Theme bundles the configured styles
// for every surface of the client: sidebar, transcript, composer, status
// bar, and overlay dialogs.
package styles
