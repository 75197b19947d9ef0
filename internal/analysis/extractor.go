package analysis

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultMaxInputBytes caps how much markup a single extraction will parse.
const DefaultMaxInputBytes = 2 << 20

// Document is the readable part of a markup body.
type Document struct {
	Title string
	Text  string
}

// Extractor turns raw markup into readable text. Implementations never fail;
// anything they cannot handle yields an empty Document.
type Extractor interface {
	Extract(markup string) Document
}

// ReadabilityExtractor strips boilerplate, runs go-readability over what is
// left and falls back to a structural walk (main, article, body) when
// readability keeps less than half of that walk's words.
type ReadabilityExtractor struct {
	maxInputBytes int
	baseURL       *url.URL
}

var _ Extractor = (*ReadabilityExtractor)(nil)

// NewReadabilityExtractor returns an extractor that truncates input past
// maxInputBytes. A non-positive limit selects DefaultMaxInputBytes.
func NewReadabilityExtractor(maxInputBytes int) *ReadabilityExtractor {
	if maxInputBytes <= 0 {
		maxInputBytes = DefaultMaxInputBytes
	}
	base, _ := url.Parse("http://localhost/")
	return &ReadabilityExtractor{maxInputBytes: maxInputBytes, baseURL: base}
}

func (e *ReadabilityExtractor) Extract(markup string) (doc Document) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("extract: recovered from panic, returning empty document: %v", r)
			doc = Document{}
		}
	}()

	markup = truncateUTF8(markup, e.maxInputBytes)
	if strings.TrimSpace(markup) == "" {
		return Document{}
	}
	if !looksLikeMarkup(markup) {
		return Document{Text: normalizeWhitespace(markup)}
	}

	gq, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		log.Debugf("extract: parse failed: %v", err)
		return Document{}
	}
	title := pageTitle(gq)
	stripBoilerplate(gq)
	structural := structuralText(gq)

	text, articleTitle := e.readableText(gq)
	if articleTitle != "" {
		title = articleTitle
	}
	// Short pages make readability prune real content.
	if len(strings.Fields(text))*2 < len(strings.Fields(structural)) {
		text = structural
	}
	return Document{Title: title, Text: text}
}

// readableText runs readability over an already cleaned DOM and renders the
// article with block breaks kept.
func (e *ReadabilityExtractor) readableText(gq *goquery.Document) (text, title string) {
	if len(gq.Nodes) == 0 {
		return "", ""
	}
	article, err := readability.FromDocument(gq.Nodes[0], e.baseURL)
	if err != nil {
		log.Debugf("extract: readability failed, using structural text: %v", err)
		return "", ""
	}
	title = strings.TrimSpace(article.Title)
	content, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil || len(content.Nodes) == 0 {
		return "", title
	}
	var b strings.Builder
	collectText(&b, content.Nodes[0], false)
	return normalizeWhitespace(b.String()), title
}

// markupTag matches a complete tag: a known HTML element name followed by
// optional attributes and a closing '>'. Comments and doctypes also count.
var markupTag = regexp.MustCompile(`<!--|<!(?i:doctype)|</?([A-Za-z][A-Za-z0-9]*)(?:\s[^<>]*)?/?>`)

// looksLikeMarkup reports whether s holds at least one real HTML tag. Text
// such as "if a<b then c" has no closed tag and stays plain.
func looksLikeMarkup(s string) bool {
	for _, m := range markupTag.FindAllStringSubmatchIndex(s, -1) {
		if m[2] < 0 {
			return true
		}
		if atom.Lookup([]byte(strings.ToLower(s[m[2]:m[3]]))) != 0 {
			return true
		}
	}
	return false
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

const skippedElements = "script, style, noscript, template, nav, header, footer, aside, form, iframe, svg"

// extractStructural removes boilerplate and collects text from the first of
// <main>, <article> or <body>.
func extractStructural(markup string) Document {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Document{}
	}
	title := pageTitle(gq)
	stripBoilerplate(gq)
	return Document{Title: title, Text: structuralText(gq)}
}

func pageTitle(gq *goquery.Document) string {
	return strings.TrimSpace(gq.Find("head title").First().Text())
}

// stripBoilerplate drops non-content elements and cookie or consent banners in place.
func stripBoilerplate(gq *goquery.Document) {
	gq.Find(skippedElements).Remove()
	gq.Find("[id], [class], [role], [aria-label]").Each(func(_ int, s *goquery.Selection) {
		if len(s.Nodes) > 0 && isBoilerplateContainer(s.Nodes[0]) {
			s.Remove()
		}
	})
}

func structuralText(gq *goquery.Document) string {
	for _, sel := range []string{"main", "article", "body"} {
		if found := gq.Find(sel).First(); len(found.Nodes) > 0 {
			var b strings.Builder
			collectText(&b, found.Nodes[0], false)
			return normalizeWhitespace(b.String())
		}
	}
	return ""
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "pre", "code":
			inPre = true
		case "br", "hr", "ul", "ol":
			b.WriteString("\n")
		case "p", "div", "section", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6", "li", "tr", "td", "th":
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.ReplaceAll(data, "\t", " ")
			data = strings.ReplaceAll(data, "\r", " ")
		}
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}

	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
			b.WriteString("\n\n")
		case "li", "tr", "div", "section", "pre", "code":
			b.WriteString("\n")
		case "td", "th":
			b.WriteString(" ")
		}
	}
}

// isBoilerplateContainer returns true if the element looks like a cookie or consent banner.
func isBoilerplateContainer(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && key != "role" && key != "aria-label" && !strings.HasPrefix(key, "data-") {
			continue
		}
		val := strings.ToLower(attr.Val)
		for _, marker := range []string{"cookie", "consent", "gdpr"} {
			if strings.Contains(val, marker) {
				return true
			}
		}
	}
	return false
}

// normalizeWhitespace collapses space runs inside lines and keeps at most one
// blank line between paragraphs.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			continue
		}
		out = append(out, strings.Join(strings.Fields(trimmed), " "))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
