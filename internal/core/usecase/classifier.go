package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

// detector inspects prepared content and reports whether it fired.
type detector func(c clipText) (domain.Classification, bool)

type clipText struct {
	raw   string
	lower string
	lines []string
}

var (
	schemePrefixes = []string{"http://", "https://", "ftp://"}
	domainSuffixes = []string{".com", ".org", ".net", ".edu", ".gov", ".io", ".co", ".ai", ".dev"}

	correspondenceMarkers = []string{
		"dear ", "hello ", "hi ", "greetings",
		"sincerely", "best regards", "kind regards", "yours truly",
		"subject:", "to:", "from:", "cc:", "bcc:",
		"[recipient", "dear sir", "dear madam",
	}

	fileExtensions = []string{
		".txt", ".py", ".js", ".html", ".css", ".json", ".xml", ".md",
		".csv", ".xlsx", ".pdf", ".doc", ".ppt", ".zip", ".rar", ".go",
	}

	passwordSpecials = "!@#$%^&*()_+-="
	dataSeparators   = []string{"\t", ",", "|", ";"}
)

type codeTier struct {
	weight   float64
	keywords []string
}

// Keywords are matched against lowercased content.
var codeTiers = []codeTier{
	{weight: 0.4, keywords: []string{
		"def ", "function ", "class ", "import ", "from ", "#include",
		"public class", "select ", "create table", "insert into",
	}},
	{weight: 0.25, keywords: []string{
		"private ", "public ", "var ", "let ", "const ", "=>", "function(",
		"if (", "for (", "while (", "catch (", "try {",
	}},
	{weight: 0.1, keywords: []string{"{", "}", "==", "!=", "&&", "||", "++", "--"}},
}

// ContentClassifier maps clipboard text to a category through an ordered
// detector cascade. The first detector that fires wins.
type ContentClassifier struct {
	detectors []detector
}

func NewContentClassifier() *ContentClassifier {
	return &ContentClassifier{
		detectors: []detector{
			detectWebScheme,
			detectBareDomain,
			detectEmailAddress,
			detectCorrespondence,
			detectFilePath,
			detectPassword,
			detectCode,
			detectData,
		},
	}
}

// Classify is pure; callers reject empty input before calling.
func (c *ContentClassifier) Classify(text string) domain.Classification {
	prepared := prepareContent(text)
	for _, detect := range c.detectors {
		if result, ok := detect(prepared); ok {
			return result
		}
	}
	return defaultText(prepared)
}

func prepareContent(text string) clipText {
	trimmed := strings.TrimSpace(text)
	return clipText{
		raw:   trimmed,
		lower: strings.ToLower(trimmed),
		lines: strings.Split(trimmed, "\n"),
	}
}

func detectWebScheme(c clipText) (domain.Classification, bool) {
	for _, prefix := range schemePrefixes {
		if strings.HasPrefix(c.lower, prefix) {
			return domain.Classification{Category: domain.CategoryWeb, Confidence: 0.95}, true
		}
	}
	if strings.HasPrefix(c.lower, "www.") {
		return domain.Classification{Category: domain.CategoryWeb, Confidence: 0.85}, true
	}
	return domain.Classification{}, false
}

func detectBareDomain(c clipText) (domain.Classification, bool) {
	if !isSingleToken(c.raw) || !strings.Contains(c.raw, ".") {
		return domain.Classification{}, false
	}
	// Addresses belong to the email detector.
	if strings.Contains(c.raw, "@") {
		return domain.Classification{}, false
	}
	if !hasAnySuffix(c.lower, domainSuffixes) {
		return domain.Classification{}, false
	}
	if len(strings.Split(c.raw, ".")) < 2 {
		return domain.Classification{}, false
	}
	return domain.Classification{Category: domain.CategoryWeb, Confidence: 0.85}, true
}

func detectEmailAddress(c clipText) (domain.Classification, bool) {
	parts := strings.Split(c.raw, "@")
	if len(parts) != 2 || !strings.Contains(parts[1], ".") {
		return domain.Classification{}, false
	}
	labels := strings.Split(parts[1], ".")
	confidence := 0.7
	if utf8.RuneCountInString(labels[len(labels)-1]) >= 2 {
		confidence = 0.9
	}
	return domain.Classification{Category: domain.CategoryEmail, Confidence: confidence}, true
}

func detectCorrespondence(c clipText) (domain.Classification, bool) {
	flattened := strings.ReplaceAll(c.lower, "\n", " ")
	count := 0
	for _, marker := range correspondenceMarkers {
		if strings.Contains(flattened, marker) {
			count++
		}
	}
	if count >= 2 || (count >= 1 && len(c.lines) > 2) {
		confidence := min(0.9, 0.6+0.1*float64(count))
		return domain.Classification{Category: domain.CategoryEmail, Confidence: round2(confidence)}, true
	}
	return domain.Classification{}, false
}

func detectFilePath(c clipText) (domain.Classification, bool) {
	if !strings.ContainsAny(c.raw, `/\`) || !isSingleToken(c.raw) {
		return domain.Classification{}, false
	}
	confidence := 0.7
	if hasAnySuffix(c.lower, fileExtensions) {
		confidence = 0.9
	}
	return domain.Classification{Category: domain.CategoryFile, Confidence: confidence}, true
}

func detectPassword(c clipText) (domain.Classification, bool) {
	if utf8.RuneCountInString(c.raw) >= 50 || !isSingleToken(c.raw) {
		return domain.Classification{}, false
	}
	var hasDigit, hasLetter, hasUpper, hasLower, hasSpecial bool
	for _, r := range c.raw {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasLetter = true
			if unicode.IsUpper(r) {
				hasUpper = true
			}
			if unicode.IsLower(r) {
				hasLower = true
			}
		}
		if strings.ContainsRune(passwordSpecials, r) {
			hasSpecial = true
		}
	}
	if !hasDigit || !hasLetter {
		return domain.Classification{}, false
	}
	confidence := 0.6
	if hasSpecial && hasUpper && hasLower {
		confidence = 0.8
	}
	return domain.Classification{Category: domain.CategoryPassword, Confidence: confidence}, true
}

func detectCode(c clipText) (domain.Classification, bool) {
	score := codeScore(c.lower)
	if score < 0.3 {
		return domain.Classification{}, false
	}
	return domain.Classification{Category: domain.CategoryCode, Confidence: round2(min(0.95, 0.5+score))}, true
}

func codeScore(lower string) float64 {
	score := 0.0
	for _, tier := range codeTiers {
		for _, keyword := range tier.keywords {
			if strings.Contains(lower, keyword) {
				score += tier.weight
			}
		}
	}
	return score
}

func detectData(c clipText) (domain.Classification, bool) {
	if len(c.lines) > 3 {
		head := c.lines
		if len(head) > 5 {
			head = head[:5]
		}
		hits := 0
		for _, line := range head {
			for _, sep := range dataSeparators {
				if strings.Contains(line, sep) {
					hits++
				}
			}
		}
		if hits >= 3 {
			confidence := 0.6
			if strings.ContainsAny(c.raw, "\t,") {
				confidence = 0.8
			}
			return domain.Classification{Category: domain.CategoryData, Confidence: confidence}, true
		}
	}

	total := utf8.RuneCountInString(c.raw)
	digits := 0
	for _, r := range c.raw {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if total > 10 && float64(digits) > float64(total)*0.3 {
		return domain.Classification{Category: domain.CategoryData, Confidence: 0.7}, true
	}
	return domain.Classification{}, false
}

func defaultText(c clipText) domain.Classification {
	if utf8.RuneCountInString(c.raw) > 20 {
		return domain.Classification{Category: domain.CategoryText, Confidence: 0.9}
	}
	return domain.Classification{Category: domain.CategoryText, Confidence: 0.6}
}

func isSingleToken(s string) bool {
	return s != "" && strings.IndexFunc(s, unicode.IsSpace) < 0
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// round2 keeps additive confidences stable under float accumulation.
func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
