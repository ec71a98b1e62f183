package model

// --- v2 create tweet ---

type TweetReq struct {
	Text  string      `json:"text"`
	Media *TweetMedia `json:"media,omitempty"`
	Reply *TweetReply `json:"reply,omitempty"`
}
type TweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}
type TweetReply struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}
type TweetResp struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// --- v1.1 media/upload (chunked: INIT, APPEND, FINALIZE) ---

type MediaUploadResp struct {
	MediaID       int64             `json:"media_id"`
	MediaIDString string            `json:"media_id_string"`
	Error         *MediaUploadError `json:"error,omitempty"`
}

type MediaUploadError struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}
