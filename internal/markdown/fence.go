package markdown

import "strings"

// Fence info strings carry a language tag plus an optional caption in a small
// comment-style grammar:
//
//	```go // title: main.go
//
// Inside the fenced body, sentinel comment lines control line highlighting and
// are stripped from the code before it reaches the highlighter:
//
//	// highlight-start ... // highlight-end   marks the enclosed lines
//	// highlight-next-line                    marks the following line
const (
	titleSentinel         = "// title:"
	highlightStart        = "// highlight-start"
	highlightEnd          = "// highlight-end"
	highlightNextLine     = "// highlight-next-line"
)

// parseFenceInfo splits a fence info string into language tag and title.
func parseFenceInfo(info string) (lang, title string) {
	info = strings.TrimSpace(info)
	if info == "" {
		return "", ""
	}
	if idx := strings.Index(info, titleSentinel); idx >= 0 {
		title = strings.TrimSpace(info[idx+len(titleSentinel):])
		info = strings.TrimSpace(info[:idx])
	}
	// Language is the first whitespace-delimited token; anything else in the
	// info string is ignored for forward compatibility.
	if fields := strings.Fields(info); len(fields) > 0 {
		lang = fields[0]
	}
	return lang, title
}

// stripHighlightSentinels removes highlight sentinel lines from a fenced code
// body and returns the cleaned lines plus the 1-based set of lines (in the
// cleaned body) to be marked. Sentinels never appear in rendered output.
func stripHighlightSentinels(lines []string) (code []string, highlights map[int]bool) {
	highlights = make(map[int]bool)
	code = make([]string, 0, len(lines))

	inRange := false
	nextLine := false
	for _, line := range lines {
		switch strings.TrimSpace(line) {
		case highlightStart:
			inRange = true
			continue
		case highlightEnd:
			inRange = false
			continue
		case highlightNextLine:
			nextLine = true
			continue
		}
		code = append(code, line)
		if inRange || nextLine {
			highlights[len(code)] = true
		}
		nextLine = false
	}
	if len(highlights) == 0 {
		return code, nil
	}
	return code, highlights
}
