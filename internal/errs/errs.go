// Package errs defines the failure classes of a spindle run. Every error
// is terminal for the current run; nothing in spindle retries.
package errs

import "fmt"

// FileNotFound reports a missing document or image file. Raised before any
// network call is made.
type FileNotFound struct {
	Path string
}

func (e *FileNotFound) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// ContentTooLong reports a post whose ordinal-prefixed text exceeds the
// 280-rune cap. Snippet holds the first 280 runes that would have been
// postable.
type ContentTooLong struct {
	Index   int
	Length  int
	Snippet string
}

func (e *ContentTooLong) Error() string {
	return fmt.Sprintf("post %d is %d runes, limit is 280; postable portion: %q", e.Index, e.Length, e.Snippet)
}

// TooManyImages reports a post with more than four non-gif images.
type TooManyImages struct {
	Index int
	Count int
}

func (e *TooManyImages) Error() string {
	return fmt.Sprintf("post %d has %d images, limit is 4", e.Index, e.Count)
}

// TooManyGifs reports a post that mixes a gif with other media. A gif must
// be the only attachment on its post.
type TooManyGifs struct {
	Index int
	Count int
}

func (e *TooManyGifs) Error() string {
	return fmt.Sprintf("post %d attaches a gif alongside %d other images; a gif must be posted alone", e.Index, e.Count-1)
}

// ImageTooLarge reports an image over the 5 MiB upload cap.
type ImageTooLarge struct {
	Path string
	Size int64
}

func (e *ImageTooLarge) Error() string {
	return fmt.Sprintf("image too large: %s is %d bytes, limit is 5242880", e.Path, e.Size)
}

// UploadFailed reports a failed media upload pipeline. When any upload
// fails the whole run aborts before a single post is created.
type UploadFailed struct {
	Path string
	Err  error
}

func (e *UploadFailed) Error() string {
	return fmt.Sprintf("upload failed for %s: %v", e.Path, e.Err)
}

func (e *UploadFailed) Unwrap() error { return e.Err }

// PostFailed reports a failed post creation at Index. Posts 0..Index-1 are
// already published and are not retracted.
type PostFailed struct {
	Index     int
	Published int
	Err       error
}

func (e *PostFailed) Error() string {
	return fmt.Sprintf("post %d failed after %d posts were already published: %v", e.Index, e.Published, e.Err)
}

func (e *PostFailed) Unwrap() error { return e.Err }
