// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sanitize reduces annotated markup to a fixed allow-list of tags
// and attributes before it reaches the display layer. The annotation
// engine's output must already be safe; this is the independent second
// layer, not a replacement for engine discipline.
// Implements: prd002-sanitization (R1-R3).
package sanitize

import (
	"fmt"
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
)

// allowedTags is the fixed tag allow-list (R1.1).
var allowedTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "blockquote": true, "br": true,
	"code": true, "div": true, "em": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"i": true, "li": true, "ol": true, "p": true, "pre": true, "s": true,
	"span": true, "strong": true, "sub": true, "sup": true,
	"table": true, "tbody": true, "td": true, "th": true, "thead": true,
	"tr": true, "ul": true,
}

// allowedAttrs is the fixed attribute allow-list (R1.2). data-ref-number
// carries the click-routing contract and must survive sanitization.
var allowedAttrs = map[string]bool{
	"class": true, "title": true, "href": true, "data-ref-number": true,
	"id": true, "colspan": true, "rowspan": true,
}

// droppedTags are removed along with their entire subtree; all other
// disallowed tags are unwrapped, keeping their children (R1.3).
var droppedTags = map[string]bool{
	"script": true, "style": true,
}

// voidTags render without a closing tag.
var voidTags = map[string]bool{
	"br": true,
}

// Clean parses markup and re-serializes it keeping only allow-listed tags
// and attributes. href values are restricted to http, https, fragment, and
// root-relative targets.
func Clean(markup string) (string, error) {
	doc, err := xhtml.Parse(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parsing markup: %w", err)
	}

	body := findBody(doc)
	if body == nil {
		return "", fmt.Errorf("parsing markup: no body node")
	}

	var b strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		renderNode(&b, c)
	}
	return b.String(), nil
}

func findBody(n *xhtml.Node) *xhtml.Node {
	if n.Type == xhtml.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

func renderNode(b *strings.Builder, n *xhtml.Node) {
	switch n.Type {
	case xhtml.TextNode:
		b.WriteString(html.EscapeString(n.Data))
		return
	case xhtml.ElementNode:
		name := strings.ToLower(n.Data)
		if droppedTags[name] {
			return
		}
		if !allowedTags[name] {
			renderChildren(b, n)
			return
		}
		b.WriteByte('<')
		b.WriteString(name)
		for _, attr := range n.Attr {
			key := strings.ToLower(attr.Key)
			if !allowedAttrs[key] {
				continue
			}
			if key == "href" && !safeHref(attr.Val) {
				continue
			}
			b.WriteByte(' ')
			b.WriteString(key)
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(attr.Val))
			b.WriteByte('"')
		}
		b.WriteByte('>')
		if voidTags[name] {
			return
		}
		renderChildren(b, n)
		b.WriteString("</")
		b.WriteString(name)
		b.WriteByte('>')
	default:
		// Comments, doctypes, and anything else are dropped.
		return
	}
}

func renderChildren(b *strings.Builder, n *xhtml.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c)
	}
}

// safeHref accepts fragment, root-relative, and http(s) targets only.
func safeHref(val string) bool {
	val = strings.TrimSpace(val)
	return strings.HasPrefix(val, "#") ||
		strings.HasPrefix(val, "/") ||
		strings.HasPrefix(val, "http://") ||
		strings.HasPrefix(val, "https://")
}
