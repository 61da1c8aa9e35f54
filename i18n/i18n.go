// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"
)

// Message keys. The English text doubles as the key.
const (
	CandidateName  = "Candidate Name"
	Company        = "Company"
	Category       = "Category"
	AssignedTo     = "Assigned To"
	AssignmentDate = "Assignment Date"

	MenuMain        = "Mobility Trailblazers"
	MenuSubmissions = "Submissions"
	MenuVoting      = "Voting"
	MenuReports     = "Reports"
	MenuSettings    = "Settings"
)

var supported = []language.Tag{language.English, language.German}

var matcher = language.NewMatcher(supported)

var german = map[string]string{
	CandidateName:   "Kandidatenname",
	Company:         "Unternehmen",
	Category:        "Kategorie",
	AssignedTo:      "Zugewiesen an",
	AssignmentDate:  "Zuweisungsdatum",
	MenuSubmissions: "Einreichungen",
	MenuVoting:      "Abstimmung",
	MenuReports:     "Berichte",
	MenuSettings:    "Einstellungen",
}

func init() {
	for key, text := range german {
		if err := message.SetString(language.German, key, text); err != nil {
			panic(err)
		}
	}
}

// Match picks the supported language for an Accept-Language header.
// English is the fallback.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// Translator renders message keys in one language.
type Translator struct {
	p *message.Printer
}

// New returns a translator for tag.
func New(tag language.Tag) Translator {
	return Translator{p: message.NewPrinter(tag)}
}

// T translates a message key.
func (t Translator) T(key string) string {
	return t.p.Sprintf(key)
}

// Normalize trims s and converts it to NFC so composed and decomposed
// umlauts compare and export identically.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
