package extraction

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"github.com/bookprep/backend/internal/models"
	"github.com/tidwall/gjson"
)

// Array keys the extractor looks for. Provider responses are chunked, so a
// single document can contain several independent {"questions":[...]} objects
// scattered through surrounding prose.
const (
	keyQuestions = "questions"
	keySolutions = "solutions"
)

var blockStartPatterns = map[string]*regexp.Regexp{
	keyQuestions: regexp.MustCompile(`\{\s*"questions"\s*:\s*\[`),
	keySolutions: regexp.MustCompile(`\{\s*"solutions"\s*:\s*\[`),
}

// ExtractQuestions mines question records out of a raw provider response.
// Every recoverable JSON block is parsed and merged; duplicates (by label)
// keep the first occurrence. When no JSON block is recoverable at all the
// markdown fallback parser takes over.
func ExtractQuestions(text string) []models.ExtractedQuestion {
	blocks := collectBlocks(text, keyQuestions)
	if len(blocks) == 0 {
		log.Printf("[extract] no question JSON blocks found, trying markdown fallback")
		return ParseMarkdownQuestions(text)
	}

	var all []models.ExtractedQuestion
	for _, raw := range blocks {
		var block struct {
			Questions []models.ExtractedQuestion `json:"questions"`
		}
		if err := json.Unmarshal([]byte(raw), &block); err != nil {
			log.Printf("WARN: [extract] skipping undecodable questions block: %v", err)
			continue
		}
		all = append(all, block.Questions...)
	}
	return dedupeQuestions(all)
}

// ExtractSolutions is the solution-set counterpart of ExtractQuestions.
// There is no markdown fallback for solutions; zero recoverable blocks
// yields an empty result.
func ExtractSolutions(text string) []models.ExtractedSolution {
	blocks := collectBlocks(text, keySolutions)
	if len(blocks) == 0 {
		log.Printf("[extract] no solution JSON blocks found")
		return []models.ExtractedSolution{}
	}

	var all []models.ExtractedSolution
	for _, raw := range blocks {
		var block struct {
			Solutions []models.ExtractedSolution `json:"solutions"`
		}
		if err := json.Unmarshal([]byte(raw), &block); err != nil {
			log.Printf("WARN: [extract] skipping undecodable solutions block: %v", err)
			continue
		}
		all = append(all, block.Solutions...)
	}
	return dedupeSolutions(all)
}

// collectBlocks finds every JSON object of the shape {"<key>": [...]} in the
// text and returns the valid (possibly repaired) raw JSON of each. The text
// as a whole is not valid JSON — blocks are located by candidate-start
// patterns and closed by a balanced-brace scan that ignores braces inside
// string literals (math notation is full of them).
func collectBlocks(text, key string) []string {
	re := blockStartPatterns[key]
	literals := []string{`{"` + key + `"`, `{ "` + key + `"`}

	var blocks []string
	cursor := 0
	for cursor < len(text) {
		start := nextCandidate(text, cursor, literals, re)
		if start < 0 {
			break
		}

		end := scanBalanced(text, start)
		if end < 0 {
			// Unclosed object; move past the candidate and keep scanning.
			cursor = start + 1
			continue
		}

		raw := text[start:end]
		if !gjson.Valid(raw) {
			repaired := RepairEscapes(raw)
			if !gjson.Valid(repaired) {
				// A brace-balanced but unparsable span can swallow a good
				// block, so rescan from just past the candidate start.
				log.Printf("WARN: [extract] dropping malformed %s block at offset %d", key, start)
				cursor = start + 1
				continue
			}
			raw = repaired
		}
		if !gjson.Get(raw, key).IsArray() {
			cursor = end
			continue
		}

		blocks = append(blocks, raw)
		cursor = end
	}
	return blocks
}

// nextCandidate returns the earliest candidate block start at or after
// cursor, checking the literal spellings and the whitespace-tolerant regex.
func nextCandidate(text string, cursor int, literals []string, re *regexp.Regexp) int {
	best := -1
	for _, lit := range literals {
		if idx := strings.Index(text[cursor:], lit); idx >= 0 {
			pos := cursor + idx
			if best < 0 || pos < best {
				best = pos
			}
		}
	}
	if loc := re.FindStringIndex(text[cursor:]); loc != nil {
		pos := cursor + loc[0]
		if best < 0 || pos < best {
			best = pos
		}
	}
	return best
}

// scanBalanced scans forward from an opening brace and returns the index one
// past the brace that closes it, or -1 if the object never closes. Braces
// inside string literals do not count; escape sequences are skipped without
// interpretation.
func scanBalanced(s string, start int) int {
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++ // skip the escaped character
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

func dedupeQuestions(qs []models.ExtractedQuestion) []models.ExtractedQuestion {
	seen := make(map[string]bool, len(qs))
	out := make([]models.ExtractedQuestion, 0, len(qs))
	for _, q := range qs {
		label := string(q.QuestionLabel)
		if seen[label] {
			log.Printf("[extract] dropping duplicate question label %q", label)
			continue
		}
		seen[label] = true
		out = append(out, q)
	}
	return out
}

func dedupeSolutions(sols []models.ExtractedSolution) []models.ExtractedSolution {
	seen := make(map[string]bool, len(sols))
	out := make([]models.ExtractedSolution, 0, len(sols))
	for _, s := range sols {
		label := string(s.QuestionLabel)
		if seen[label] {
			log.Printf("[extract] dropping duplicate solution label %q", label)
			continue
		}
		seen[label] = true
		out = append(out, s)
	}
	return out
}
