// Package htmlref inspects string values that may hold HTML fragments and
// extracts the image sources embedded in them.
package htmlref

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func parseFragment(content string) []*html.Node {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil
	}
	return nodes
}

// HasMarkup reports whether content parses into at least one element node.
// A bare path such as "worlds/w/art/a.png" has no markup.
func HasMarkup(content string) bool {
	if !strings.Contains(content, "<") {
		return false
	}
	for _, node := range parseFragment(content) {
		if hasElement(node) {
			return true
		}
	}
	return false
}

// ImageSources returns the distinct src attributes of every img element in
// content, in first-seen order. Elements without a src are ignored.
func ImageSources(content string) []string {
	var sources []string
	seen := make(map[string]struct{})
	for _, node := range parseFragment(content) {
		visit(node, func(n *html.Node) {
			if n.Type != html.ElementNode || n.DataAtom != atom.Img {
				return
			}
			src, ok := attr(n, "src")
			if !ok {
				return
			}
			if _, dup := seen[src]; dup {
				return
			}
			seen[src] = struct{}{}
			sources = append(sources, src)
		})
	}
	return sources
}

// ReplaceSource rewrites the src attribute of every img element whose
// decoded value equals oldSrc, leaving the rest of content byte for byte. The
// new value is HTML-escaped and keeps the attribute's quote style. It returns
// the result and the number of attributes changed.
func ReplaceSource(content, oldSrc, newSrc string) (string, int) {
	var out strings.Builder
	out.Grow(len(content) + 16)
	replaced := 0
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		raw := z.Raw()
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			if name, _ := z.TagName(); atom.Lookup(name) == atom.Img {
				var n int
				raw, n = replaceSrcAttr(raw, oldSrc, newSrc)
				replaced += n
			}
		}
		out.Write(raw)
		if tt == html.ErrorToken {
			break
		}
	}
	return out.String(), replaced
}

// replaceSrcAttr scans the raw text of one start tag. The tokenizer has
// already accepted it, so only the attribute grammar matters here.
func replaceSrcAttr(tag []byte, oldSrc, newSrc string) ([]byte, int) {
	i := bytes.IndexAny(tag, " \t\n\f\r/>")
	if i < 0 {
		return tag, 0
	}
	var out []byte
	last, replaced := 0, 0
	for i < len(tag) {
		for i < len(tag) && (isTagSpace(tag[i]) || tag[i] == '/') {
			i++
		}
		if i >= len(tag) || tag[i] == '>' {
			break
		}
		start := i
		for i < len(tag) && !isTagSpace(tag[i]) && tag[i] != '=' && tag[i] != '>' && tag[i] != '/' {
			i++
		}
		name := strings.ToLower(string(tag[start:i]))
		for i < len(tag) && isTagSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || tag[i] != '=' {
			continue
		}
		i++
		for i < len(tag) && isTagSpace(tag[i]) {
			i++
		}
		var valStart, valEnd int
		quote := byte(0)
		if i < len(tag) && (tag[i] == '"' || tag[i] == '\'') {
			quote = tag[i]
			valStart = i + 1
			end := bytes.IndexByte(tag[valStart:], quote)
			if end < 0 {
				return tag, 0
			}
			valEnd = valStart + end
			i = valEnd + 1
		} else {
			valStart = i
			for i < len(tag) && !isTagSpace(tag[i]) && tag[i] != '>' {
				i++
			}
			valEnd = i
		}
		if name != "src" || html.UnescapeString(string(tag[valStart:valEnd])) != oldSrc {
			continue
		}
		escaped := html.EscapeString(newSrc)
		if quote == 0 {
			out = append(out, tag[last:valStart]...)
			out = append(out, '"')
			out = append(out, escaped...)
			out = append(out, '"')
		} else {
			out = append(out, tag[last:valStart]...)
			out = append(out, escaped...)
		}
		last = valEnd
		replaced++
	}
	if replaced == 0 {
		return tag, 0
	}
	return append(out, tag[last:]...), replaced
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\f' || c == '\r'
}

func hasElement(n *html.Node) bool {
	if n.Type == html.ElementNode {
		return true
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if hasElement(child) {
			return true
		}
	}
	return false
}

func visit(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		visit(child, fn)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
