package xapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spindle/internal/model"
)

func TestMediaInit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "INIT", r.PostFormValue("command"))
		assert.Equal(t, "1000", r.PostFormValue("total_bytes"))
		assert.Equal(t, "image/png", r.PostFormValue("media_type"))
		json.NewEncoder(w).Encode(model.MediaUploadResp{MediaIDString: "m-1"})
	}))
	defer srv.Close()

	c := New(http.DefaultClient, srv.URL, "")
	id, err := c.MediaInit(context.Background(), 1000, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "m-1", id)
}

func TestMediaInit_NumericFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.MediaUploadResp{MediaID: 9999999999})
	}))
	defer srv.Close()

	c := New(http.DefaultClient, srv.URL, "")
	id, err := c.MediaInit(context.Background(), 1, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "9999999999", id)
}

func TestMediaInit_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(http.DefaultClient, srv.URL, "")
	_, err := c.MediaInit(context.Background(), 1, "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing media_id")
}

func TestMediaAppend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "APPEND", r.PostFormValue("command"))
		assert.Equal(t, "m-1", r.PostFormValue("media_id"))
		assert.Equal(t, "aGVsbG8=", r.PostFormValue("media_data"))
		assert.Equal(t, "0", r.PostFormValue("segment_index"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(http.DefaultClient, srv.URL, "")
	assert.NoError(t, c.MediaAppend(context.Background(), "m-1", "aGVsbG8=", 0))
}

func TestMediaFinalize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "FINALIZE", r.PostFormValue("command"))
		json.NewEncoder(w).Encode(model.MediaUploadResp{MediaIDString: "m-1"})
	}))
	defer srv.Close()

	c := New(http.DefaultClient, srv.URL, "")
	id, err := c.MediaFinalize(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, "m-1", id)
}

func TestMediaFinalize_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.MediaUploadResp{
			MediaIDString: "m-1",
			Error:         &model.MediaUploadError{Code: 1, Name: "InvalidMedia", Message: "unsupported"},
		})
	}))
	defer srv.Close()

	c := New(http.DefaultClient, srv.URL, "")
	_, err := c.MediaFinalize(context.Background(), "m-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestCreatePost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req model.TweetReq
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "Hello thread", req.Text)
		require.NotNil(t, req.Media)
		assert.Equal(t, []string{"m-1", "m-2"}, req.Media.MediaIDs)
		require.NotNil(t, req.Reply)
		assert.Equal(t, "prev-7", req.Reply.InReplyToTweetID)

		resp := model.TweetResp{}
		resp.Data.ID = "42"
		resp.Data.Text = req.Text
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := New(http.DefaultClient, "", srv.URL)
	resp, err := c.CreatePost(context.Background(), "Hello thread", []string{"m-1", "m-2"}, "prev-7")
	require.NoError(t, err)
	assert.Equal(t, "42", resp.Data.ID)
}

func TestCreatePost_NoMediaNoReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req model.TweetReq
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Nil(t, req.Media)
		assert.Nil(t, req.Reply)

		resp := model.TweetResp{}
		resp.Data.ID = "1"
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := New(http.DefaultClient, "", srv.URL)
	_, err := c.CreatePost(context.Background(), "solo", nil, "")
	assert.NoError(t, err)
}

func TestCreatePost_V2Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(403)
		w.Write([]byte(`{"title":"Forbidden","detail":"not allowed"}`))
	}))
	defer srv.Close()

	c := New(http.DefaultClient, "", srv.URL)
	_, err := c.CreatePost(context.Background(), "x", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Forbidden")
	assert.Contains(t, err.Error(), "not allowed")
	assert.Contains(t, err.Error(), "403")
}

func TestDiagnoseHTTPError(t *testing.T) {
	resp := &http.Response{StatusCode: 401}

	v1 := diagnoseHTTPError(resp, []byte(`{"errors":[{"code":89,"message":"Invalid or expired token."}]}`), "POST media/upload INIT")
	assert.Contains(t, v1, "89")
	assert.Contains(t, v1, "Invalid or expired token")

	fallback := diagnoseHTTPError(&http.Response{StatusCode: 500}, []byte("something broke"), "GET /x")
	assert.Contains(t, fallback, "500")
	assert.Contains(t, fallback, "something broke")
}
