package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

const (
	classifyPreviewChars = 35
	scoreAppNameChars    = 8
)

func buildCategoryPrompt(text string) string {
	return fmt.Sprintf(`Text:"%s".Most likely: code/web/email/file/data/password/text`, previewText(text, classifyPreviewChars))
}

func buildScorePrompt(processName string, category domain.Category) string {
	return fmt.Sprintf("%s for %s (0-5):", shortAppName(processName), strings.ToLower(string(category)))
}

// previewText truncates on rune boundaries and marks the cut with "...".
func previewText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}

func shortAppName(processName string) string {
	name := strings.TrimSuffix(strings.TrimSpace(processName), ".exe")
	runes := []rune(name)
	if len(runes) > scoreAppNameChars {
		runes = runes[:scoreAppNameChars]
	}
	return string(runes)
}

type categoryKeyword struct {
	keyword  string
	category domain.Category
}

// Checked in order against the lowercased reply.
var replyCategoryKeywords = []categoryKeyword{
	{"code", domain.CategoryCode},
	{"web", domain.CategoryWeb},
	{"url", domain.CategoryWeb},
	{"email", domain.CategoryEmail},
	{"file", domain.CategoryFile},
	{"data", domain.CategoryData},
	{"password", domain.CategoryPassword},
	{"text", domain.CategoryText},
}

func categoryFromReply(reply string) (domain.Category, bool) {
	lower := strings.ToLower(stripReasoning(reply))
	for _, ck := range replyCategoryKeywords {
		if strings.Contains(lower, ck.keyword) {
			return ck.category, true
		}
	}
	return "", false
}

type appContextEntry struct {
	key     string
	context string
}

var appContexts = []appContextEntry{
	{"msedge", "browser"},
	{"chrome", "browser"},
	{"firefox", "browser"},
	{"notepad++", "code editor"},
	{"notepad", "text editor"},
	{"code", "code editor"},
	{"excel", "spreadsheet"},
	{"word", "document editor"},
	{"outlook", "email client"},
	{"olk", "email client"},
	{"winmail", "email client"},
	{"hxmail", "email client"},
	{"thunderbird", "email client"},
	{"mailspring", "email client"},
	{"spark", "email client"},
	{"teams", "communication"},
	{"discord", "communication"},
	{"slack", "communication"},
	{"cmd", "command terminal"},
	{"powershell", "command terminal"},
	{"terminal", "command terminal"},
	{"explorer", "file manager"},
	{"nautilus", "file manager"},
	{"calculator", "calculator"},
	{"paint", "image editor"},
	{"photoshop", "image editor"},
}

// AppContext describes what kind of application a process is, for logs.
func AppContext(processName string) string {
	name := normalizeProcessName(processName)
	for _, entry := range appContexts {
		if strings.Contains(name, entry.key) {
			return entry.context
		}
	}
	return "application"
}
