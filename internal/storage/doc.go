// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides SQLite-backed conversation persistence for the
// embedded demo backend. The real backend owns persistence in production;
// this store only exists so the client can be exercised offline with the
// same REST and streaming contract.
package storage
