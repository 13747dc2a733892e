// Package summarize builds extractive summaries: it scores the sentences
// of an article by TF-IDF combined with heuristic signals and re-emits the
// top ones in their original order.
package summarize

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultMaxSentences = 3

	noSentenceLimit  = 400
	rawFallbackLimit = 500
	summaryLimit     = 600

	minSentenceRunes = 30
)

// Abbreviations that end with sentence punctuation but must not terminate
// a sentence.
var abbreviations = []string{
	"т.д.", "т.п.", "г.", "ул.", "пр.", "стр.", "рис.", "им.", "акад.",
	"т.е.", "т.к.", "др.", "проф.", "доц.", "канд.",
	"Mr.", "Ms.", "Dr.", "Inc.", "Ltd.", "e.g.", "i.e.", "p.m.", "a.m.",
}

var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)подробнее`),
	regexp.MustCompile(`(?i)читать дальше`),
	regexp.MustCompile(`(?i)читать далее`),
	regexp.MustCompile(`(?i)подписывайтесь`),
	regexp.MustCompile(`(?i)источник:`),
	regexp.MustCompile(`©`),
	regexp.MustCompile(`(?i)телеграм`),
	regexp.MustCompile(`(?i)t\.me/`),
	regexp.MustCompile(`(?i)twitter`),
	regexp.MustCompile(`(?i)facebook`),
	regexp.MustCompile(`(?i)фото:`),
	regexp.MustCompile(`(?i)видео:`),
	regexp.MustCompile(`(?i)смотрите также`),
	regexp.MustCompile(`(?i)рассказали`),
	regexp.MustCompile(`(?i)сообщили`),
	regexp.MustCompile(`(?i)по материалам`),
	regexp.MustCompile(`(?i)как пишет`),
	regexp.MustCompile(`(?i)как сообщили`),
	regexp.MustCompile(`(?i)read more`),
	regexp.MustCompile(`(?i)see also`),
	regexp.MustCompile(`(?i)source:`),
	regexp.MustCompile(`(?i)photo:`),
	regexp.MustCompile(`(?i)subscribe`),
}

// Reporting/announcement verbs that signal factual content.
var factualKeywords = []string{
	"заявил", "сообщил", "стало", "будет", "стал", "стала", "стали",
	"составил", "достиг", "увеличил", "снизил", "принял", "решил",
	"said", "announced", "reported",
}

// Residual boilerplate phrases penalized during scoring.
var penaltyPhrases = []string{
	"подробнее", "читать дальше", "источник", "©", "подписывайтесь",
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	digitRe      = regexp.MustCompile(`[0-9]`)
	capsRunRe    = regexp.MustCompile(`[А-ЯA-Z]{3,}`)
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// Summarize reduces text to at most maxSentences extractive sentences.
// Deterministic for identical input; empty input yields empty output.
func Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}

	cleaned := normalizeWhitespace(text)
	sentences := splitSentences(cleaned)
	if len(sentences) == 0 {
		return truncate(cleaned, noSentenceLimit)
	}

	type indexed struct {
		idx  int // position in the original sentence list
		text string
	}
	var filtered []indexed
	for i, s := range sentences {
		sc := strings.TrimSpace(s)
		if utf8.RuneCountInString(sc) >= minSentenceRunes && !isBoilerplate(sc) {
			filtered = append(filtered, indexed{idx: i, text: sc})
		}
	}

	if len(filtered) == 0 {
		// Everything got filtered; fall back to the leading raw sentences.
		n := maxSentences
		if len(sentences) < n {
			n = len(sentences)
		}
		return truncate(strings.Join(sentences[:n], " "), rawFallbackLimit)
	}

	if len(filtered) <= maxSentences {
		parts := make([]string, len(filtered))
		for i, f := range filtered {
			parts[i] = f.text
		}
		return truncate(strings.Join(parts, " "), summaryLimit)
	}

	texts := make([]string, len(filtered))
	for i, f := range filtered {
		texts[i] = f.text
	}
	tfidf := computeTFIDF(texts)

	combined := make([]float64, len(filtered))
	for i, f := range filtered {
		combined[i] = tfidf[i]*0.3 + heuristicScore(f.text, f.idx, len(sentences))*0.7
	}

	// Stable sort keeps document order among equal scores.
	order := make([]int, len(filtered))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return combined[order[a]] > combined[order[b]]
	})
	selected := make(map[int]bool, maxSentences)
	for _, j := range order[:maxSentences] {
		selected[j] = true
	}

	// Re-emit in original document order, not score order.
	var out []string
	for j, f := range filtered {
		if selected[j] {
			out = append(out, f.text)
		}
	}
	return truncate(strings.Join(out, " "), summaryLimit)
}

func normalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// splitSentences splits on sentence-ending punctuation followed by
// whitespace, merging fragments that end with a known abbreviation.
func splitSentences(text string) []string {
	var parts []string
	var cur strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		cur.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			parts = append(parts, cur.String())
			cur.Reset()
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}

	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(out) > 0 && endsWithAbbreviation(out[len(out)-1]) {
			out[len(out)-1] = out[len(out)-1] + " " + p
		} else {
			out = append(out, p)
		}
	}
	return out
}

func endsWithAbbreviation(s string) bool {
	for _, abbr := range abbreviations {
		if strings.HasSuffix(s, abbr) {
			return true
		}
	}
	return false
}

func isBoilerplate(s string) bool {
	for _, re := range boilerplatePatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// tokenize lowercases, strips punctuation and drops words of two runes or
// fewer.
func tokenize(s string) []string {
	s = nonWordRe.ReplaceAllString(strings.ToLower(s), " ")
	var words []string
	for _, w := range strings.Fields(s) {
		if utf8.RuneCountInString(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// computeTFIDF scores each sentence by term frequency times inverse
// document frequency, where the document set is the filtered sentences of
// this article only.
func computeTFIDF(sentences []string) []float64 {
	tokenized := make([][]string, len(sentences))
	for i, s := range sentences {
		tokenized[i] = tokenize(s)
	}

	df := make(map[string]int)
	for _, words := range tokenized {
		seen := make(map[string]bool, len(words))
		for _, w := range words {
			if !seen[w] {
				seen[w] = true
				df[w]++
			}
		}
	}

	total := float64(len(sentences))
	idf := make(map[string]float64, len(df))
	for w, n := range df {
		idf[w] = math.Log(total / float64(1+n))
	}

	scores := make([]float64, len(sentences))
	for i, words := range tokenized {
		if len(words) == 0 {
			continue
		}
		counts := make(map[string]int, len(words))
		for _, w := range words {
			counts[w]++
		}
		totalWords := float64(len(words))
		var score float64
		for _, w := range words {
			tf := float64(counts[w]) / totalWords
			score += tf * idf[w]
		}
		scores[i] = score
	}
	return scores
}

// heuristicScore rates a sentence by length, position and factual signals.
// position/total refer to the unfiltered sentence list.
func heuristicScore(s string, position, total int) float64 {
	clean := normalizeWhitespace(s)
	length := utf8.RuneCountInString(clean)
	if length < 20 {
		return -1000
	}

	lengthScore := 1.0 - math.Abs(140-float64(length))/200.0
	positionScore := math.Max(0, 1.0-(float64(position)/float64(total))*0.3)

	var digitsBonus, capsBonus, keywordBonus, boilerplatePenalty float64
	if digitRe.MatchString(clean) {
		digitsBonus = 10
	}
	if capsRunRe.MatchString(clean) {
		capsBonus = 5
	}

	lower := strings.ToLower(clean)
	for _, kw := range factualKeywords {
		if strings.Contains(lower, kw) {
			keywordBonus += 5
		}
	}
	for _, phrase := range penaltyPhrases {
		if strings.Contains(lower, phrase) {
			boilerplatePenalty -= 20
		}
	}

	return lengthScore*10 + positionScore*5 + digitsBonus + capsBonus + keywordBonus + boilerplatePenalty
}

// truncate cuts s to limit runes, appending an ellipsis only when
// something was actually cut.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimRight(string(r[:limit]), " ") + "…"
}
