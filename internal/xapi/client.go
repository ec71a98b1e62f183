// Package xapi is the capability boundary to the social platform. The
// core pipeline depends only on Client; the HTTP implementation signs
// requests with the active profile's OAuth1 credentials.
package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dghubble/oauth1"

	"spindle/internal/model"
)

const (
	DefaultUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
	DefaultTweetURL  = "https://api.twitter.com/2/tweets"
)

// Client is the already-credentialed collaborator the pipeline posts
// through. Implementations perform no retries; every failure surfaces to
// the caller as-is.
type Client interface {
	MediaInit(ctx context.Context, totalBytes int64, mediaType string) (string, error)
	MediaAppend(ctx context.Context, mediaID, b64Data string, segmentIndex int) error
	MediaFinalize(ctx context.Context, mediaID string) (string, error)
	CreatePost(ctx context.Context, text string, mediaIDs []string, replyToID string) (*model.TweetResp, error)
}

// Credentials is an OAuth1 consumer/access key pair.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// HTTPClient signs requests to the signed-in account.
func (c Credentials) HTTPClient(ctx context.Context) *http.Client {
	config := oauth1.NewConfig(c.ConsumerKey, c.ConsumerSecret)
	token := oauth1.NewToken(c.AccessToken, c.AccessSecret)
	return config.Client(ctx, token)
}

// HTTP is the real Client over the v1.1 chunked media upload and v2 tweet
// creation endpoints.
type HTTP struct {
	http      *http.Client
	uploadURL string
	tweetURL  string
}

// New builds an HTTP client. Empty uploadURL/tweetURL select the public
// API endpoints; tests point them at a local server.
func New(httpClient *http.Client, uploadURL, tweetURL string) *HTTP {
	if uploadURL == "" {
		uploadURL = DefaultUploadURL
	}
	if tweetURL == "" {
		tweetURL = DefaultTweetURL
	}
	return &HTTP{http: httpClient, uploadURL: uploadURL, tweetURL: tweetURL}
}

// MediaInit declares an upload and returns the server-assigned media id.
func (c *HTTP) MediaInit(ctx context.Context, totalBytes int64, mediaType string) (string, error) {
	form := url.Values{
		"command":     {"INIT"},
		"total_bytes": {strconv.FormatInt(totalBytes, 10)},
		"media_type":  {mediaType},
	}
	resp, err := c.postForm(ctx, form, "POST media/upload INIT")
	if err != nil {
		return "", err
	}
	id := mediaID(resp)
	if id == "" {
		return "", fmt.Errorf("INIT response missing media_id")
	}
	return id, nil
}

// MediaAppend uploads one base64-encoded segment. Callers send segment 0
// only; the validator caps images below the single-segment limit.
func (c *HTTP) MediaAppend(ctx context.Context, mediaID, b64Data string, segmentIndex int) error {
	form := url.Values{
		"command":       {"APPEND"},
		"media_id":      {mediaID},
		"media_data":    {b64Data},
		"segment_index": {strconv.Itoa(segmentIndex)},
	}
	_, err := c.postForm(ctx, form, "POST media/upload APPEND")
	return err
}

// MediaFinalize commits the upload and returns the final media id.
func (c *HTTP) MediaFinalize(ctx context.Context, id string) (string, error) {
	form := url.Values{
		"command":  {"FINALIZE"},
		"media_id": {id},
	}
	resp, err := c.postForm(ctx, form, "POST media/upload FINALIZE")
	if err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("finalize rejected: %s (code %d)", resp.Error.Message, resp.Error.Code)
	}
	if final := mediaID(resp); final != "" {
		return final, nil
	}
	return id, nil
}

// CreatePost creates one tweet. A non-empty replyToID threads the tweet
// under an earlier one.
func (c *HTTP) CreatePost(ctx context.Context, text string, mediaIDs []string, replyToID string) (*model.TweetResp, error) {
	reqBody := model.TweetReq{Text: text}
	if len(mediaIDs) > 0 {
		reqBody.Media = &model.TweetMedia{MediaIDs: mediaIDs}
	}
	if replyToID != "" {
		reqBody.Reply = &model.TweetReply{InReplyToTweetID: replyToID}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tweetURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s", diagnoseHTTPError(resp, body, "POST /2/tweets"))
	}

	var tr model.TweetResp
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode tweet response: %w", err)
	}
	if tr.Data.ID == "" {
		return nil, fmt.Errorf("tweet response missing id: %s", string(body))
	}
	return &tr, nil
}

func (c *HTTP) postForm(ctx context.Context, form url.Values, op string) (*model.MediaUploadResp, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s", diagnoseHTTPError(resp, body, op))
	}

	// APPEND returns 204 with an empty body.
	out := &model.MediaUploadResp{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", op, err)
		}
	}
	return out, nil
}

func mediaID(resp *model.MediaUploadResp) string {
	if resp.MediaIDString != "" {
		return resp.MediaIDString
	}
	if resp.MediaID != 0 {
		return strconv.FormatInt(resp.MediaID, 10)
	}
	return ""
}

// diagnoseHTTPError renders an API error body readably. The upload host
// speaks the v1.1 error shape, the tweet host the v2 shape; unknown bodies
// fall back to the raw text.
func diagnoseHTTPError(resp *http.Response, body []byte, op string) string {
	var v2 struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &v2); err == nil && v2.Title != "" {
		return fmt.Sprintf("%s: %d %s: %s", op, resp.StatusCode, v2.Title, v2.Detail)
	}

	var v1 struct {
		Errors []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &v1); err == nil && len(v1.Errors) > 0 {
		e := v1.Errors[0]
		return fmt.Sprintf("%s: %d code %d: %s", op, resp.StatusCode, e.Code, e.Message)
	}

	return fmt.Sprintf("%s: %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
}
