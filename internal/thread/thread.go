// Package thread publishes a parsed document as a reply chain and holds
// the end-to-end pipeline: validate, upload, post.
package thread

import (
	"context"

	log "github.com/sirupsen/logrus"

	"spindle/internal/document"
	"spindle/internal/errs"
	"spindle/internal/model"
	"spindle/internal/upload"
	"spindle/internal/validate"
	"spindle/internal/xapi"
)

// Chain describes a fully published thread.
type Chain struct {
	RootID  string
	FinalID string
	Posts   int
	Final   *model.TweetResp
}

// Run executes the whole pipeline for a parsed document. Every validation
// rule passes before any network call; every upload completes before any
// post. A failure anywhere aborts the run, but posts already published by
// an aborted chain stay up.
func Run(ctx context.Context, client xapi.Client, doc *document.Document) (*Chain, error) {
	if err := validate.Document(doc.Contents); err != nil {
		return nil, err
	}
	images, err := validate.LoadImages(doc.Contents)
	if err != nil {
		return nil, err
	}
	mediaIDs, err := upload.All(ctx, client, images)
	if err != nil {
		return nil, err
	}
	return PostAll(ctx, client, doc.Contents, mediaIDs)
}

// PostAll posts each content in document order. Post i>0 replies to the
// id returned for post i-1, so posting is strictly sequential; there is
// nothing to parallelize. A failure at post i returns PostFailed and
// leaves posts 0..i-1 published; no compensating delete exists.
func PostAll(ctx context.Context, client xapi.Client, contents []document.Content, mediaIDs map[string]string) (*Chain, error) {
	chain := &Chain{}
	prevID := ""
	for i, c := range contents {
		ids := make([]string, 0, len(c.Images))
		for _, img := range c.Images {
			ids = append(ids, mediaIDs[img])
		}
		resp, err := client.CreatePost(ctx, c.Text, ids, prevID)
		if err != nil {
			return nil, &errs.PostFailed{Index: i, Published: i, Err: err}
		}
		log.WithFields(log.Fields{"post": i, "id": resp.Data.ID, "images": len(ids)}).Info("posted")
		if i == 0 {
			chain.RootID = resp.Data.ID
		}
		chain.FinalID = resp.Data.ID
		chain.Final = resp
		chain.Posts = i + 1
		prevID = resp.Data.ID
	}
	return chain, nil
}
