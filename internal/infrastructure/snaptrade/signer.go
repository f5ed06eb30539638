package snaptrade

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
)

// signedRequest is the canonical representation SnapTrade expects to be
// HMAC-signed: the JSON request content, the request path, and the query.
type signedRequest struct {
	Content json.RawMessage `json:"content"`
	Path    string          `json:"path"`
	Query   string          `json:"query"`
}

// sign produces the base64 HMAC-SHA256 signature for one request.
func sign(consumerKey, path, query string, content []byte) (string, error) {
	if len(content) == 0 {
		content = []byte("null")
	}

	payload, err := json.Marshal(signedRequest{
		Content: content,
		Path:    path,
		Query:   query,
	})
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, []byte(consumerKey))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
