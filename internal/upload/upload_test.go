package upload

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spindle/internal/errs"
	"spindle/internal/validate"
	"spindle/internal/xapi/xapitest"
)

func images(paths ...string) map[string]*validate.Image {
	out := make(map[string]*validate.Image)
	for i, p := range paths {
		out[p] = &validate.Image{
			Path:       p,
			TotalBytes: int64(100 * (i + 1)),
			MediaType:  "image/png",
			B64:        fmt.Sprintf("payload-%d", i),
		}
	}
	return out
}

func TestAll_UploadsEveryImage(t *testing.T) {
	fake := &xapitest.Fake{}
	ids, err := All(context.Background(), fake, images("/a.png", "/b.png", "/c.png"))
	require.NoError(t, err)

	assert.Len(t, ids, 3)
	assert.Len(t, fake.Inits, 3)
	assert.Len(t, fake.Appends, 3)
	assert.Len(t, fake.Finalizes, 3)
	for _, call := range fake.Appends {
		assert.Equal(t, 0, call.SegmentIndex)
	}
	for path, id := range ids {
		assert.NotEmpty(t, id, path)
	}
}

func TestAll_Empty(t *testing.T) {
	fake := &xapitest.Fake{}
	ids, err := All(context.Background(), fake, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, fake.Inits)
}

func TestAll_InitFailureAborts(t *testing.T) {
	fake := &xapitest.Fake{
		InitErr: func(call xapitest.InitCall) error {
			if call.MediaType == "image/gif" {
				return errors.New("boom")
			}
			return nil
		},
	}
	imgs := images("/a.png", "/b.png")
	imgs["/bad.gif"] = &validate.Image{Path: "/bad.gif", TotalBytes: 5, MediaType: "image/gif", B64: "x"}

	_, err := All(context.Background(), fake, imgs)
	var uf *errs.UploadFailed
	require.True(t, errors.As(err, &uf))
	assert.Equal(t, "/bad.gif", uf.Path)
	assert.EqualError(t, errors.Unwrap(uf), "boom")
}

func TestAll_FinalizeFailureAborts(t *testing.T) {
	var failID string
	fake := &xapitest.Fake{}
	fake.FinalizeErr = func(mediaID string) error {
		if failID == "" {
			failID = mediaID
			return errors.New("finalize rejected")
		}
		return nil
	}

	_, err := All(context.Background(), fake, images("/a.png", "/b.png"))
	var uf *errs.UploadFailed
	require.True(t, errors.As(err, &uf))
}

func TestAll_PipelineOrderWithinImage(t *testing.T) {
	fake := &xapitest.Fake{}
	_, err := All(context.Background(), fake, images("/only.png"))
	require.NoError(t, err)

	// The append and finalize both carry the id INIT returned.
	require.Len(t, fake.Appends, 1)
	require.Len(t, fake.Finalizes, 1)
	assert.Equal(t, "media-1", fake.Appends[0].MediaID)
	assert.Equal(t, "media-1", fake.Finalizes[0])
	assert.Equal(t, "payload-0", fake.Appends[0].B64Data)
}
