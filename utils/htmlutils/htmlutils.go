// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for reading rendered HTML
// pages.
package htmlutils

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Validates that response seems to be an HTML response.
func hasHTMLContentType(media string) bool {
	const expectedMedia = "text/html"

	return strings.EqualFold(
		expectedMedia,
		media[0:min(len(media), len(expectedMedia))],
	)
}

// AsReader converts an HTTP response body to an io.Reader with the correct charset.
func AsReader(resp *http.Response) (io.Reader, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	media := resp.Header.Get("Content-Type")
	if !hasHTMLContentType(media) {
		return nil, fmt.Errorf("media type is %s", media)
	}

	return charset.NewReader(resp.Body, media)
}

// AsNode parses an io.Reader as an HTML document.
func AsNode(r io.Reader) (*html.Node, error) {
	n, err := html.Parse(r)
	if nil != err {
		return nil, fmt.Errorf("parsing body as HTML: %w", err)
	}

	return n, nil
}

// Parse reads an HTML response into a document.
func Parse(resp *http.Response) (*html.Node, error) {
	r, err := AsReader(resp)
	if err != nil {
		return nil, err
	}

	return AsNode(r)
}

// Text returns the text content of n with runs of whitespace collapsed.
func Text(n *html.Node) string {
	sb := strings.Builder{}
	node2string(n, &sb)

	return sb.String()
}

func node2string(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		for _, word := range strings.Fields(n.Data) {
			if sb.Len() != 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(word)
		}

		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		node2string(child, sb)
	}
}

// Attr returns the value of the attribute key, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}

	return ""
}

// HasClass reports whether class is one of n's classes.
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}

	return false
}

// FindAll returns, in document order, the elements under n that match.
func FindAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node

	if n.Type == html.ElementNode && match(n) {
		out = append(out, n)
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		out = append(out, FindAll(child, match)...)
	}

	return out
}

// ByClass returns the elements carrying class.
func ByClass(n *html.Node, class string) []*html.Node {
	return FindAll(n, func(e *html.Node) bool { return HasClass(e, class) })
}

// ByTag returns the elements named tag.
func ByTag(n *html.Node, tag string) []*html.Node {
	return FindAll(n, func(e *html.Node) bool { return strings.EqualFold(e.Data, tag) })
}

// ByID returns the element with the given id, or nil.
func ByID(n *html.Node, id string) *html.Node {
	if nodes := FindAll(n, func(e *html.Node) bool { return Attr(e, "id") == id }); len(nodes) > 0 {
		return nodes[0]
	}

	return nil
}
