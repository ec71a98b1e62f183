package htmlimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_Article(t *testing.T) {
	html := `<html><body>
	<nav><p>ignored nav text</p></nav>
	<article>
		<p>First paragraph.</p>
		<p>Second paragraph.</p>
		<img src="photo.jpg" alt="a photo">
		<p>Third paragraph.</p>
	</article>
	</body></html>`

	out, err := Convert(strings.NewReader(html))
	require.NoError(t, err)

	want := "First paragraph.\n---\nSecond paragraph.\n![a photo](photo.jpg)\n---\nThird paragraph.\n"
	assert.Equal(t, want, out)
}

func TestConvert_BodyFallback(t *testing.T) {
	html := `<html><body><p>Only paragraph.</p></body></html>`
	out, err := Convert(strings.NewReader(html))
	require.NoError(t, err)
	assert.Equal(t, "Only paragraph.\n", out)
}

func TestConvert_ImageInsideParagraph(t *testing.T) {
	html := `<article><p>Text around <img src="inline.png" alt=""> an image.</p></article>`
	out, err := Convert(strings.NewReader(html))
	require.NoError(t, err)
	assert.Contains(t, out, "![](inline.png)")
	assert.Contains(t, out, "Text around")
}

func TestConvert_LeadingImage(t *testing.T) {
	html := `<article><img src="hero.png" alt="hero"><p>Caption.</p></article>`
	out, err := Convert(strings.NewReader(html))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "![hero](hero.png)"))
}

func TestConvert_Empty(t *testing.T) {
	_, err := Convert(strings.NewReader("<html><body></body></html>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no paragraphs")
}
