// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string helpers shared across the TUI:
// rune-aware and width-aware truncation, padding, and line splitting.
package util
