// Package htmlimport converts an HTML article into a thread document:
// each paragraph becomes a block, images become markdown references the
// document parser understands. The output is an authoring starting point,
// not a finished thread; paragraphs over the post length cap still need a
// human edit before posting.
package htmlimport

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"spindle/internal/document"
)

// Convert reads HTML and renders a thread document. Content is taken from
// the first <article> element, falling back to <body>.
func Convert(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}

	var blocks []string
	root.Find("p, img").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "img" {
			src, ok := s.Attr("src")
			if !ok || src == "" {
				return
			}
			alt := s.AttrOr("alt", "")
			ref := fmt.Sprintf("![%s](%s)", alt, src)
			if len(blocks) == 0 {
				blocks = append(blocks, ref)
				return
			}
			blocks[len(blocks)-1] += "\n" + ref
			return
		}
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		blocks = append(blocks, text)
	})

	if len(blocks) == 0 {
		return "", fmt.Errorf("no paragraphs found")
	}
	return strings.Join(blocks, "\n"+document.Delimiter+"\n") + "\n", nil
}
