package extraction

import (
	"log"
	"regexp"
	"strings"

	"github.com/bookprep/backend/internal/models"
)

// Numbered-question styles, in priority order. The first pattern that
// matches anywhere in the document is used for the whole document — mixing
// styles within one scan is far rarer than a style the earlier patterns
// simply don't cover.
var questionStartPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^[ \t]*(\d{1,3})[.)][ \t]+`),
	regexp.MustCompile(`(?mi)^[ \t]*question[ \t]+(\d{1,3})[:.]?[ \t]*`),
	regexp.MustCompile(`(?m)^[ \t]*\((\d{1,3})\)[ \t]+`),
}

var (
	lowerChoicePattern = regexp.MustCompile(`(?m)^[ \t]*\(?([a-e])\)[ \t]*(.+)`)
	upperChoicePattern = regexp.MustCompile(`(?m)^[ \t]*\(?([A-E])[).][ \t]*(.+)`)
)

// ParseMarkdownQuestions is the fallback for provider responses that contain
// no recoverable JSON at all: plain numbered questions with lettered
// choices. An empty result is a valid outcome meaning "nothing extractable",
// not an error.
func ParseMarkdownQuestions(text string) []models.ExtractedQuestion {
	for _, re := range questionStartPatterns {
		matches := re.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			continue
		}

		questions := make([]models.ExtractedQuestion, 0, len(matches))
		for i, m := range matches {
			label := text[m[2]:m[3]]

			// Block runs from the end of this marker to the start of the next.
			blockEnd := len(text)
			if i+1 < len(matches) {
				blockEnd = matches[i+1][0]
			}
			block := text[m[1]:blockEnd]

			qText, choices := splitChoices(block)
			questions = append(questions, models.ExtractedQuestion{
				QuestionLabel: models.FlexString(label),
				Text:          strings.TrimSpace(qText),
				Choices:       choices,
			})
		}

		log.Printf("[extract] markdown fallback matched %d questions", len(questions))
		return dedupeQuestions(questions)
	}
	// Non-nil so the persisted payload reads {"questions": []}, not null.
	return []models.ExtractedQuestion{}
}

// splitChoices separates a question block into the question text and its
// choices. Lowercase "a)" style is tried first; uppercase/other style only
// when no lowercase choice is present, so documents using "A." for answers
// and "a)" for sub-parts don't double-extract.
func splitChoices(block string) (string, []string) {
	locs := lowerChoicePattern.FindAllStringSubmatchIndex(block, -1)
	if len(locs) == 0 {
		locs = upperChoicePattern.FindAllStringSubmatchIndex(block, -1)
	}
	if len(locs) == 0 {
		return block, nil
	}

	choices := make([]string, 0, len(locs))
	for _, l := range locs {
		choices = append(choices, strings.TrimSpace(block[l[4]:l[5]]))
	}
	return block[:locs[0][0]], choices
}
