// Package normalize flattens a structured chat message into a single plain
// text blob suitable for pattern matching. Flatten and Clean are pure and
// idempotent so that extraction stays deterministic.
package normalize

import (
	"strings"

	"github.com/bgrierson/lead-filter-bot/internal/models"
)

var zeroWidthReplacer = strings.NewReplacer(
	"​", "", // zero width space
	"‌", "", // zero width non-joiner
	"‍", "", // zero width joiner
	"⁠", "", // word joiner
	"\uFEFF", "", // BOM
)

var bulletReplacer = strings.NewReplacer(
	"•", "-", // •
	"◦", "-", // ◦
	"▪", "-", // ▪
	"‣", "-", // ‣
	"∙", "-", // ∙
	"·", "-", // ·
)

// Flatten joins message content, embed text, and attachment names into one
// cleaned blob.
func Flatten(msg models.InboundMessage) string {
	var parts []string
	parts = append(parts, msg.Content)

	for _, e := range msg.Embeds {
		parts = append(parts, e.Title, e.AuthorName, e.Description)
		for _, f := range e.Fields {
			if f.Name == "" && f.Value == "" {
				continue
			}
			parts = append(parts, f.Name+": "+f.Value)
		}
		parts = append(parts, e.FooterText, e.URL, e.ImageURL, e.ThumbnailURL)
	}

	for _, a := range msg.Attachments {
		parts = append(parts, a.Filename)
	}

	return Clean(strings.Join(parts, "\n"))
}

// Clean normalizes a text blob: zero-width characters stripped, decorative
// bullets mapped to "-", lines trimmed of trailing whitespace, blank lines
// dropped. Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	text = zeroWidthReplacer.Replace(text)
	text = bulletReplacer.Replace(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
