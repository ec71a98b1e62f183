// Package document turns a thread document into ordered post contents.
//
// A document is UTF-8 text split into blocks on the literal delimiter
// "---". The split is a naive substring match: a "---" inside prose also
// splits the document. Image references use markdown syntax ![alt](path);
// only the path is consumed, resolved against the document's directory.
package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"

	"spindle/internal/errs"
)

// Delimiter separates blocks. Not escapable.
const Delimiter = "---"

var imageRef = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)

// Meta is the optional YAML front matter of a document.
type Meta struct {
	Profile string   `yaml:"profile"`
	Tags    []string `yaml:"tags"`
}

// Content is one block after image extraction: the ordinal-prefixed
// display text and the referenced image paths in appearance order.
// Contents are built once and never mutated.
type Content struct {
	Text   string
	Images []string
}

// Document is a fully parsed thread document.
type Document struct {
	Path     string
	Meta     Meta
	Contents []Content
}

// Load reads and parses the document at path. The path is checked before
// parsing; a missing file is a FileNotFound.
func Load(path string) (*Document, error) {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return nil, &errs.FileNotFound{Path: path}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	meta, contents, err := Parse(raw, filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	return &Document{Path: abs, Meta: meta, Contents: contents}, nil
}

// Parse splits raw into blocks and extracts each block's content. dir is
// the directory image paths resolve against. Empty blocks are preserved;
// block order is document order.
func Parse(raw []byte, dir string) (Meta, []Content, error) {
	var meta Meta
	rest, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		return meta, nil, fmt.Errorf("front matter: %w", err)
	}

	blocks := strings.Split(string(rest), Delimiter)
	contents := make([]Content, len(blocks))
	for i, block := range blocks {
		contents[i] = extract(block, i, len(blocks), dir)
	}

	if len(meta.Tags) > 0 {
		last := &contents[len(contents)-1]
		last.Text += "\n\n" + hashtags(meta.Tags)
	}
	return meta, contents, nil
}

// extract strips image references from one raw block and prefixes the
// ordinal label. Referenced paths are resolved but not checked for
// existence; that is the validator's job.
func extract(block string, index, total int, dir string) Content {
	var images []string
	for _, m := range imageRef.FindAllStringSubmatch(block, -1) {
		images = append(images, resolve(dir, m[1]))
	}
	body := imageRef.ReplaceAllString(block, "")
	body = strings.Trim(body, "\r\n")
	return Content{
		Text:   fmt.Sprintf("%d/%d\n\n%s", index, total-1, body),
		Images: images,
	}
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

func hashtags(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		t = strings.TrimSpace(t)
		if !strings.HasPrefix(t, "#") {
			t = "#" + t
		}
		out[i] = t
	}
	return strings.Join(out, " ")
}
