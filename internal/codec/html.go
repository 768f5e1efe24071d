package codec

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
)

const netscapeHeader = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<!-- This is an automatically generated file.
     It will be read and overwritten.
     DO NOT EDIT! -->
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
`

const netscapeFooter = `</DL><p>
`

// HTML is the Netscape bookmark file dialect understood by every browser.
// Only anchor text and href survive a round trip.
type HTML struct {
	opts Options
}

func (*HTML) Format() Format { return FormatHTML }

// Encode writes one <DT><A> line per bookmark. Outside strict mode title and
// URL are written verbatim, so a literal `"` or `<` corrupts the line.
func (h *HTML) Encode(bookmarks []domain.Bookmark) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(netscapeHeader)
	for _, b := range bookmarks {
		title, href := b.Title, b.URL
		if h.opts.Strict {
			title, href = html.EscapeString(title), html.EscapeString(href)
		}
		fmt.Fprintf(&buf, "    <DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n", href, b.DateAdded.Unix(), title)
	}
	buf.WriteString(netscapeFooter)
	return buf.Bytes(), nil
}

// Decode parses the document leniently and creates one bookmark per anchor
// carrying an href. ADD_DATE and folder structure are ignored.
func (h *HTML) Decode(data []byte) ([]domain.Bookmark, error) {
	doc, err := nethtml.Parse(bytes.NewReader(data))
	if err != nil {
		return []domain.Bookmark{}, nil
	}

	base := findBase(doc)
	now := h.opts.now()
	bookmarks := make([]domain.Bookmark, 0)

	walk(doc, func(n *nethtml.Node) {
		if n.DataAtom != atom.A {
			return
		}
		href, ok := attr(n, "href")
		if !ok {
			return
		}
		title := strings.TrimSpace(textContent(n))
		if title == "" {
			title = domain.DefaultTitle
		}
		bookmarks = append(bookmarks, domain.NewBookmarkAt(now, title, resolve(base, href), []string{}, "", "", ""))
	})
	return bookmarks, nil
}

func findBase(doc *nethtml.Node) *url.URL {
	var base *url.URL
	walk(doc, func(n *nethtml.Node) {
		if base != nil || n.DataAtom != atom.Base {
			return
		}
		if href, ok := attr(n, "href"); ok {
			if u, err := url.Parse(strings.TrimSpace(href)); err == nil && u.IsAbs() {
				base = u
			}
		}
	})
	return base
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func walk(n *nethtml.Node, fn func(*nethtml.Node)) {
	if n.Type == nethtml.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *nethtml.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *nethtml.Node) string {
	var sb strings.Builder
	var collect func(*nethtml.Node)
	collect = func(n *nethtml.Node) {
		if n.Type == nethtml.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}
