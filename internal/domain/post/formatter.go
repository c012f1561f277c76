package post

import (
	"regexp"
	"strings"
)

// HeadlinePrefix and HeadlineSuffix wrap the headline line of a news-commentary post.
const (
	HeadlinePrefix = "**❗️"
	HeadlineSuffix = "**"
	emphasisMarker = "**"
)

// DefaultCommentaryLabels are the labels that introduce the commentary block.
var DefaultCommentaryLabels = []string{"Мой комментарий:", "Комментарий:"}

// Formatter normalizes generated news commentary into headline + commentary paragraphs.
type Formatter struct {
	labels   []string
	collapse []*regexp.Regexp
}

func NewFormatter(labels []string) *Formatter {
	f := &Formatter{}
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		f.labels = append(f.labels, strings.ToLower(l))
		// label followed by a line break becomes a single-line label
		f.collapse = append(f.collapse, regexp.MustCompile(`(?i)(`+regexp.QuoteMeta(l)+`)[ \t]*\r?\n[ \t]*`))
	}
	return f
}

// Format wraps the first line that is neither emphasis-marked nor a commentary line as the headline.
// Lines are trimmed, empty ones dropped, and the rest joined as paragraphs.
func (f *Formatter) Format(raw string) string {
	text := strings.TrimSpace(raw)
	for _, re := range f.collapse {
		text = re.ReplaceAllString(text, "$1 ")
	}

	out := make([]string, 0, 4)
	headlineDone := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, HeadlinePrefix) {
			// a previous pass already marked the headline
			headlineDone = true
			out = append(out, line)
			continue
		}
		if !headlineDone && !strings.HasPrefix(line, emphasisMarker) && !f.isCommentary(line) {
			out = append(out, HeadlinePrefix+line+HeadlineSuffix)
			headlineDone = true
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n\n")
}

func (f *Formatter) isCommentary(line string) bool {
	l := strings.ToLower(line)
	for _, label := range f.labels {
		if strings.Contains(l, label) {
			return true
		}
	}
	return false
}
