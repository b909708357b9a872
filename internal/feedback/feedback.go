// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package feedback signs and verifies the accept/reject links posted
// alongside review comments, and turns a verified click into a stored
// signal without ever trusting an unauthenticated request.
package feedback

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
)

// Signal is the feedback a reviewer gave on a posted comment.
type Signal string

const (
	SignalAccepted Signal = "accepted"
	SignalRejected Signal = "rejected"
)

// Signer mints and verifies feedback tokens. A Signer that is not
// Enabled is inert: URL reports that signing is disabled rather than
// producing a link, and Verify rejects every token.
type Signer struct {
	BaseURL string
	Secret  string
}

// NewSigner builds a Signer from the configured base URL and secret.
func NewSigner(baseURL, secret string) Signer {
	return Signer{BaseURL: baseURL, Secret: secret}
}

// Enabled reports whether this Signer can produce usable feedback
// links. Both the base URL and secret must be set; either being blank
// means there is nowhere to send the click or no way to authenticate
// it, so links must be omitted rather than silently broken.
func (s Signer) Enabled() bool {
	return s.BaseURL != "" && s.Secret != ""
}

// Sign computes the hex-encoded HMAC-SHA-256 token over "commentID:signal".
func (s Signer) Sign(commentID string, signal Signal) string {
	mac := hmac.New(sha256.New, []byte(s.Secret))
	mac.Write([]byte(signPayload(commentID, signal)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether token is the correct signature for commentID
// and signal, using a constant-time comparison so a wrong guess takes
// no less time than a near match.
func (s Signer) Verify(commentID string, signal Signal, token string) bool {
	if !s.Enabled() {
		return false
	}
	want, err := hex.DecodeString(token)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.Secret))
	mac.Write([]byte(signPayload(commentID, signal)))
	return hmac.Equal(mac.Sum(nil), want)
}

// URL builds the feedback link for commentID and signal. The second
// return value is false when the Signer is disabled, in which case the
// string is empty and must not be posted.
func (s Signer) URL(commentID string, signal Signal) (string, bool) {
	if !s.Enabled() {
		return "", false
	}
	token := s.Sign(commentID, signal)
	q := url.Values{}
	q.Set("id", commentID)
	q.Set("signal", string(signal))
	q.Set("token", token)
	return fmt.Sprintf("%s/feedback?%s", s.BaseURL, q.Encode()), true
}

func signPayload(commentID string, signal Signal) string {
	return commentID + ":" + string(signal)
}
