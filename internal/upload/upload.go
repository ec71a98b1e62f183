// Package upload runs the three-phase media upload for every distinct
// image. Pipelines for different images run concurrently with no ordering
// between them; within one image INIT, APPEND, FINALIZE are strictly
// ordered because each step needs the id returned by INIT.
package upload

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"spindle/internal/errs"
	"spindle/internal/validate"
	"spindle/internal/xapi"
)

type result struct {
	path string
	id   string
	err  error
}

// All uploads every image and returns the path → media id mapping. It
// waits for every launched pipeline to settle, then resolves to the first
// observed failure if any pipeline failed; sibling results are discarded.
// No post is attempted unless every upload succeeded.
func All(ctx context.Context, client xapi.Client, images map[string]*validate.Image) (map[string]string, error) {
	results := make(chan result, len(images))
	var wg sync.WaitGroup
	for _, img := range images {
		wg.Add(1)
		go func(img *validate.Image) {
			defer wg.Done()
			id, err := one(ctx, client, img)
			results <- result{path: img.Path, id: id, err: err}
		}(img)
	}
	wg.Wait()
	close(results)

	ids := make(map[string]string, len(images))
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = &errs.UploadFailed{Path: r.path, Err: r.err}
			}
			continue
		}
		log.WithFields(log.Fields{"path": r.path, "media_id": r.id}).Debug("uploaded")
		ids[r.path] = r.id
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return ids, nil
}

func one(ctx context.Context, client xapi.Client, img *validate.Image) (string, error) {
	id, err := client.MediaInit(ctx, img.TotalBytes, img.MediaType)
	if err != nil {
		return "", err
	}
	// Single segment: the validator caps images at 5 MiB, so no chunking.
	if err := client.MediaAppend(ctx, id, img.B64, 0); err != nil {
		return "", err
	}
	return client.MediaFinalize(ctx, id)
}
