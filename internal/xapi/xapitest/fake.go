// Package xapitest provides an in-memory Client so the pipeline can be
// exercised without network access.
package xapitest

import (
	"context"
	"fmt"
	"sync"

	"spindle/internal/model"
)

type InitCall struct {
	TotalBytes int64
	MediaType  string
}

type AppendCall struct {
	MediaID      string
	B64Data      string
	SegmentIndex int
}

type PostCall struct {
	Text      string
	MediaIDs  []string
	ReplyToID string
}

// Fake records every call and assigns deterministic ids. The error hooks
// let a test fail a specific step.
type Fake struct {
	mu        sync.Mutex
	mediaSeq  int
	postSeq   int
	Inits     []InitCall
	Appends   []AppendCall
	Finalizes []string
	Posts     []PostCall

	InitErr     func(call InitCall) error
	AppendErr   func(call AppendCall) error
	FinalizeErr func(mediaID string) error
	PostErr     func(index int, call PostCall) error
}

func (f *Fake) MediaInit(_ context.Context, totalBytes int64, mediaType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := InitCall{TotalBytes: totalBytes, MediaType: mediaType}
	if f.InitErr != nil {
		if err := f.InitErr(call); err != nil {
			return "", err
		}
	}
	f.mediaSeq++
	f.Inits = append(f.Inits, call)
	return fmt.Sprintf("media-%d", f.mediaSeq), nil
}

func (f *Fake) MediaAppend(_ context.Context, mediaID, b64Data string, segmentIndex int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := AppendCall{MediaID: mediaID, B64Data: b64Data, SegmentIndex: segmentIndex}
	if f.AppendErr != nil {
		if err := f.AppendErr(call); err != nil {
			return err
		}
	}
	f.Appends = append(f.Appends, call)
	return nil
}

func (f *Fake) MediaFinalize(_ context.Context, mediaID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FinalizeErr != nil {
		if err := f.FinalizeErr(mediaID); err != nil {
			return "", err
		}
	}
	f.Finalizes = append(f.Finalizes, mediaID)
	return mediaID, nil
}

func (f *Fake) CreatePost(_ context.Context, text string, mediaIDs []string, replyToID string) (*model.TweetResp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := PostCall{Text: text, MediaIDs: append([]string(nil), mediaIDs...), ReplyToID: replyToID}
	if f.PostErr != nil {
		if err := f.PostErr(len(f.Posts), call); err != nil {
			return nil, err
		}
	}
	f.postSeq++
	f.Posts = append(f.Posts, call)
	resp := &model.TweetResp{}
	resp.Data.ID = fmt.Sprintf("post-%d", f.postSeq)
	resp.Data.Text = text
	return resp, nil
}
