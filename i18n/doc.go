// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package i18n holds the English and German labels used in exports and the
// admin menu, and picks a language from Accept-Language.
package i18n
