package service

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	previewPolicyOnce sync.Once
	previewPolicy     *bluemonday.Policy
)

// PreviewHTML lays rendered terms out as paragraphs. Terms may carry light
// formatting (bold, italics, lists); anything else, including markup inside
// merge values, is stripped and stray text is escaped by the sanitizer.
func PreviewHTML(text string) string {
	var b strings.Builder
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(para, "\n", "<br>"))
		b.WriteString("</p>\n")
	}
	return previewSanitizer().Sanitize(b.String())
}

func previewSanitizer() *bluemonday.Policy {
	previewPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("p", "br", "b", "strong", "i", "em", "u", "ul", "ol", "li")
		previewPolicy = policy
	})
	return previewPolicy
}
