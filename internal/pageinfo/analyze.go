package pageinfo

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	maxDescriptionRunes = 200
	defaultCategory     = "other"
)

// categoryRule assigns a category when the URL or the page text contains
// one of its keywords. Rules are checked in order; the first match wins.
type categoryRule struct {
	category string
	url      []string
	content  []string
}

var categoryRules = []categoryRule{
	{category: "shopping", url: []string{"amazon", "ebay", "etsy", "shop", "store", "buy"}},
	{category: "social", url: []string{"facebook", "twitter", "instagram", "linkedin", "youtube"}},
	{category: "news", url: []string{"news", "bbc", "cnn", "reuters", "nytimes"}},
	{
		category: "work",
		url:      []string{"github", "stackoverflow", "linkedin"},
		content:  []string{"work", "job", "career"},
	},
	{
		category: "entertainment",
		url:      []string{"netflix", "spotify", "youtube"},
		content:  []string{"movie", "music", "game"},
	},
	{
		category: "finance",
		url:      []string{"bank", "finance", "money"},
		content:  []string{"investment", "stock", "banking"},
	},
}

// tagRule suggests tag when any keyword is found in the URL or the text.
type tagRule struct {
	tag     string
	url     []string
	content []string
}

var tagRules = []tagRule{
	{tag: "tutorial", url: []string{"tutorial"}},
	{tag: "guide", url: []string{"guide"}},
	{tag: "documentation", url: []string{"documentation"}},
	{tag: "api", url: []string{"api"}},
	{tag: "blog", url: []string{"blog"}},
	{tag: "article", url: []string{"article"}},

	{tag: "javascript", content: []string{"javascript", "js"}},
	{tag: "python", content: []string{"python"}},
	{tag: "react", content: []string{"react"}},
	{tag: "vue", content: []string{"vue"}},
	{tag: "angular", content: []string{"angular"}},
	{tag: "nodejs", content: []string{"node"}},
	{tag: "css", content: []string{"css"}},
	{tag: "html", content: []string{"html"}},

	{tag: "design", content: []string{"design", "ui", "ux"}},
	{tag: "security", content: []string{"security"}},
	{tag: "performance", content: []string{"performance"}},
	{tag: "testing", content: []string{"testing"}},
	{tag: "deployment", content: []string{"deployment"}},
}

// AnalyzeHTML parses an HTML document served at pageURL.
func AnalyzeHTML(r io.Reader, pageURL string) (Suggestion, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Suggestion{}, err
	}
	return Analyze(doc, pageURL), nil
}

// Analyze extracts the page info and the content hints from doc.
func Analyze(doc *html.Node, pageURL string) Suggestion {
	var (
		title, description, favicon string
		firstParagraph              *html.Node
		body                        *html.Node
	)

	walk(doc, func(n *html.Node) bool {
		switch n.DataAtom {
		case atom.Script, atom.Style:
			return false
		case atom.Title:
			if title == "" {
				title = strings.TrimSpace(text(n))
			}
		case atom.Meta:
			if strings.EqualFold(attr(n, "name"), "description") && description == "" {
				description = attr(n, "content")
			}
		case atom.Link:
			rel := strings.ToLower(strings.TrimSpace(attr(n, "rel")))
			if (rel == "icon" || rel == "shortcut icon") && favicon == "" {
				favicon = resolveRef(pageURL, attr(n, "href"))
			}
		case atom.P:
			if firstParagraph == nil {
				firstParagraph = n
			}
		case atom.Body:
			body = n
		}
		return true
	})

	if description == "" && firstParagraph != nil {
		description = truncate(text(firstParagraph), maxDescriptionRunes) + "..."
	}
	if favicon == "" {
		favicon = defaultFavicon(pageURL)
	}

	var content string
	if body != nil {
		content = strings.ToLower(text(body))
	}
	lowerURL := strings.ToLower(pageURL)

	return Suggestion{
		Page: Page{Title: title, URL: pageURL, FaviconURL: favicon},
		Hints: Hints{
			Description:       description,
			SuggestedCategory: detectCategory(lowerURL, content),
			SuggestedTags:     suggestTags(lowerURL, content),
		},
	}
}

func detectCategory(lowerURL, content string) string {
	for _, rule := range categoryRules {
		if containsAny(lowerURL, rule.url) || containsAny(content, rule.content) {
			return rule.category
		}
	}
	return defaultCategory
}

func suggestTags(lowerURL, content string) []string {
	tags := make([]string, 0)
	for _, rule := range tagRules {
		if containsAny(lowerURL, rule.url) || containsAny(content, rule.content) {
			tags = append(tags, rule.tag)
		}
	}
	return tags
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// defaultFavicon is <origin>/favicon.ico, or empty when pageURL has no origin.
func defaultFavicon(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/favicon.ico"
}

func resolveRef(pageURL, href string) string {
	href = strings.TrimSpace(href)
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// walk visits element nodes depth-first. Returning false skips the children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if n.Type == html.ElementNode && !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// text returns the text content of n, without script and style bodies.
func text(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}
