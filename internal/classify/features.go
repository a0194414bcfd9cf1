package classify

import (
	"regexp"
	"strings"
	"unicode"
)

// Feature names produced by Features. Model artifacts key their weights by
// these names; unknown names in an artifact are ignored.
const (
	FeatureAssign     = "sym:assign"
	FeatureCall       = "sym:call"
	FeatureAttribute  = "sym:attr"
	FeatureBracket    = "sym:bracket"
	FeatureEndColon   = "sym:end_colon"
	FeatureOperator   = "sym:operator"
	FeatureQuote      = "sym:quote"
	FeatureProse      = "shape:prose"
	FeatureSentence   = "shape:sentence"
	FeatureTodo       = "shape:todo"
	FeaturePragma     = "shape:pragma"
	FeatureURL        = "shape:url"
	FeatureEmpty      = "shape:empty"
	FeatureFirstToken = "first:" // prefix, followed by a lowercase keyword
)

// keywords are the first tokens that count as a "first:" feature.
// Anything else starting a comment carries no first-token signal.
var keywords = map[string]bool{
	"def": true, "class": true, "import": true, "from": true, "return": true,
	"if": true, "elif": true, "else": true, "for": true, "while": true,
	"try": true, "except": true, "finally": true, "with": true, "print": true,
	"pass": true, "raise": true, "assert": true, "yield": true, "lambda": true,
	"self": true, "del": true, "global": true, "break": true, "continue": true,
}

var (
	assignRe    = regexp.MustCompile(`(^|[^=<>!+\-*/%])=([^=]|$)`)
	callRe      = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*\(`)
	attrRe      = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*\.[A-Za-z_][A-Za-z0-9_]*`)
	operatorRe  = regexp.MustCompile(`==|!=|<=|>=|\+=|-=|\*=|->|\*\*|//`)
	firstWordRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
	proseWordRe = regexp.MustCompile(`^[A-Za-z][A-Za-z'’\-]*[,.;:!?]?$`)
	todoRe      = regexp.MustCompile(`^(?i)(todo|fixme|xxx|hack|note|nb)\b`)
	urlRe       = regexp.MustCompile(`[A-Za-z][A-Za-z0-9+.\-]*://[^\s"'()<>]+`)
	pragmaRe    = regexp.MustCompile(`^(!|-\*-|(?i:noqa|type:|pylint:|pragma|fmt:|isort:|mypy:|coding[:=]|vim?:))`)
)

// StripDelimiter removes a leading comment delimiter and surrounding
// whitespace, leaving the comment body.
func StripDelimiter(text string) string {
	body := strings.TrimSpace(text)
	for _, delim := range []string{"#", "//", ";"} {
		if strings.HasPrefix(body, delim) {
			body = strings.TrimPrefix(body, delim)
			break
		}
	}
	return strings.TrimSpace(body)
}

// Features extracts the lexical feature counts of a comment. The text may
// include its delimiter.
func Features(text string) map[string]float64 {
	f := make(map[string]float64)
	body := StripDelimiter(text)

	if body == "" {
		f[FeatureEmpty] = 1
		return f
	}
	if pragmaRe.MatchString(body) {
		f[FeaturePragma] = 1
	}
	if todoRe.MatchString(body) {
		f[FeatureTodo] = 1
	}
	// URLs are dropped before counting symbols: their "=", "." and "//"
	// are not code. Only a URL outside a string literal is prose-like.
	for _, loc := range urlRe.FindAllStringIndex(body, -1) {
		if loc[0] == 0 || !strings.ContainsRune(`"'`, rune(body[loc[0]-1])) {
			f[FeatureURL] = 1
		}
	}
	code := urlRe.ReplaceAllString(body, "")

	if first := firstWordRe.FindString(body); first != "" {
		lower := strings.ToLower(first)
		// Keywords only count when written the way code writes them.
		if keywords[lower] && first == lower {
			f[FeatureFirstToken+lower] = 1
		}
	}

	if n := len(assignRe.FindAllString(code, -1)); n > 0 {
		f[FeatureAssign] = float64(n)
	}
	if n := len(callRe.FindAllString(code, -1)); n > 0 {
		f[FeatureCall] = float64(n)
	}
	if n := len(attrRe.FindAllString(code, -1)); n > 0 {
		f[FeatureAttribute] = float64(n)
	}
	if n := len(operatorRe.FindAllString(code, -1)); n > 0 {
		f[FeatureOperator] = float64(n)
	}
	if strings.ContainsAny(code, "[]{}") {
		f[FeatureBracket] = 1
	}
	if strings.ContainsAny(body, `"'`) && !isProse(body) {
		f[FeatureQuote] = 1
	}
	if strings.HasSuffix(body, ":") {
		f[FeatureEndColon] = 1
	}

	if isProse(body) {
		f[FeatureProse] = 1
	}
	if isSentence(body) {
		f[FeatureSentence] = 1
	}
	return f
}

// isProse reports whether body reads as at least three plain words with no
// code punctuation.
func isProse(body string) bool {
	if strings.ContainsAny(body, "=()[]{}<>") {
		return false
	}
	words := strings.Fields(body)
	if len(words) < 3 {
		return false
	}
	for _, w := range words {
		if !proseWordRe.MatchString(w) {
			return false
		}
	}
	return true
}

// isSentence reports whether body starts with a capital letter and ends with
// sentence punctuation.
func isSentence(body string) bool {
	runes := []rune(body)
	if len(runes) < 2 || !unicode.IsUpper(runes[0]) {
		return false
	}
	switch runes[len(runes)-1] {
	case '.', '?', '!':
		return !strings.HasSuffix(body, "...") || len(strings.Fields(body)) > 2
	default:
		return false
	}
}
