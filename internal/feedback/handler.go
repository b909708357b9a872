// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package feedback

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ivoyant-eng/AgnusAi/internal/logging"
	"github.com/ivoyant-eng/AgnusAi/internal/storage"
)

// ErrorResponse is the JSON body of a failed feedback request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AckResponse is the JSON body of a successful feedback request.
type AckResponse struct {
	CommentID string `json:"commentId"`
	Signal    string `json:"signal"`
}

// ratingFor maps a feedback signal onto the rating vocabulary the
// Retriever already understands.
func ratingFor(signal Signal) string {
	if signal == SignalAccepted {
		return "helpful"
	}
	return "unhelpful"
}

// Handler serves the GET /feedback endpoint: it verifies the token on
// every request and only ever writes a signal it has authenticated.
type Handler struct {
	Signer  Signer
	Storage storage.Adapter
	Logger  *logging.Logger
}

// NewHandler builds a feedback Handler.
func NewHandler(signer Signer, store storage.Adapter, logger *logging.Logger) *Handler {
	return &Handler{Signer: signer, Storage: store, Logger: logger}
}

// Register mounts the feedback route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/feedback", h.handleFeedback)
}

func (h *Handler) handleFeedback(c *gin.Context) {
	commentID := c.Query("id")
	signal := Signal(c.Query("signal"))
	token := c.Query("token")

	if commentID == "" || token == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "id and token are required"})
		return
	}
	if signal != SignalAccepted && signal != SignalRejected {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "signal must be accepted or rejected"})
		return
	}

	if !h.Signer.Verify(commentID, signal, token) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired feedback token"})
		return
	}

	err := h.Storage.SaveFeedback(c.Request.Context(), storage.FeedbackRecord{
		CommentID: commentID,
		Rating:    ratingFor(signal),
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		h.Logger.Soft(c.Request.Context(), logging.TagStorageError, "failed to persist feedback signal", "comment", commentID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to record feedback"})
		return
	}

	c.JSON(http.StatusOK, AckResponse{CommentID: commentID, Signal: string(signal)})
}
