package handler

import (
	"net/http"

	"github.com/osse101/StickerSwap_Go/internal/notify"
)

// MarkAllReadResponse reports how many notifications changed
type MarkAllReadResponse struct {
	Message string `json:"message"`
	Updated int    `json:"updated"`
}

// HandleListNotifications lists the caller's inbox, newest first. ?unread=true filters.
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param unread query bool false "Only unread notifications"
// @Success 200 {array} domain.Notification
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/notifications [get]
func HandleListNotifications(inbox notify.Inbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		unread, ok := optionalBoolParam(r, w, "unread")
		if !ok {
			return
		}
		list, err := inbox.List(r.Context(), userID, unread != nil && *unread)
		if err != nil {
			respondServiceError(w, r, OpListInbox, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param notificationID path string true "Notification id"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/notifications/{notificationID}/read [post]
func HandleMarkNotificationRead(inbox notify.Inbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		if err := inbox.MarkRead(r.Context(), userID, pathParam(r, "notificationID")); err != nil {
			respondServiceError(w, r, OpMarkRead, err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgNotificationRead})
	}
}

// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Success 200 {object} MarkAllReadResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/notifications/read-all [post]
func HandleMarkAllNotificationsRead(inbox notify.Inbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		n, err := inbox.MarkAllRead(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, OpMarkAllRead, err)
			return
		}
		respondJSON(w, http.StatusOK, MarkAllReadResponse{Message: MsgNotificationsReadDone, Updated: n})
	}
}
