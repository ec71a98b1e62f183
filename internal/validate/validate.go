// Package validate enforces every pre-network rule of a run. All checks
// pass for the whole document before a single byte goes over the wire.
package validate

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"spindle/internal/document"
	"spindle/internal/errs"
)

const (
	// MaxPostRunes is the per-post text cap, counted in runes after the
	// ordinal prefix is applied.
	MaxPostRunes = 280
	// MaxImageBytes is the upload size cap per image.
	MaxImageBytes = 5242880
	// MaxImagesPerPost caps non-gif attachments. A gif must be alone.
	MaxImagesPerPost = 4
)

// Image holds one referenced image, loaded once per distinct path and
// read-only thereafter.
type Image struct {
	Path       string
	TotalBytes int64
	MediaType  string
	B64        string
}

// Document checks text length, media mix, and image existence for every
// content. The first violation aborts the run.
func Document(contents []document.Content) error {
	for i, c := range contents {
		if n := runeLen(c.Text); n > MaxPostRunes {
			return &errs.ContentTooLong{Index: i, Length: n, Snippet: truncateRunes(c.Text, MaxPostRunes)}
		}
	}
	for i, c := range contents {
		gifs := 0
		for _, img := range c.Images {
			if isGif(img) {
				gifs++
			}
		}
		if gifs > 0 && len(c.Images) > 1 {
			return &errs.TooManyGifs{Index: i, Count: len(c.Images)}
		}
		if gifs == 0 && len(c.Images) > MaxImagesPerPost {
			return &errs.TooManyImages{Index: i, Count: len(c.Images)}
		}
	}
	for _, path := range UniquePaths(contents) {
		if !existsFile(path) {
			return &errs.FileNotFound{Path: path}
		}
	}
	return nil
}

// LoadImages reads every distinct referenced image into memory, applying
// the size cap. Callers run Document first, so every path exists.
func LoadImages(contents []document.Content) (map[string]*Image, error) {
	images := make(map[string]*Image)
	for _, path := range UniquePaths(contents) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &errs.FileNotFound{Path: path}
		}
		if int64(len(data)) > MaxImageBytes {
			return nil, &errs.ImageTooLarge{Path: path, Size: int64(len(data))}
		}
		images[path] = &Image{
			Path:       path,
			TotalBytes: int64(len(data)),
			MediaType:  MediaType(path),
			B64:        base64.StdEncoding.EncodeToString(data),
		}
	}
	return images, nil
}

// UniquePaths returns the distinct image paths of the document in first
// appearance order. Two contents referencing the same resolved path share
// one upload.
func UniquePaths(contents []document.Content) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range contents {
		for _, img := range c.Images {
			if !seen[img] {
				seen[img] = true
				out = append(out, img)
			}
		}
	}
	return out
}

// MediaType maps a file extension to its upload MIME type.
func MediaType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func isGif(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gif")
}

func existsFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
