package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"contas/internal/domain/notification"
	"contas/internal/shared/middleware"
)

// NotificationHandler exposes device registration, preferences and the
// notification inbox over HTTP
type NotificationHandler struct {
	notifications *notification.Service
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type RegisterDeviceRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"deviceType"`
}

type UpdatePreferencesRequest struct {
	BillsEnabled    *bool `json:"billsEnabled"`
	InvoicesEnabled *bool `json:"invoicesEnabled"`
	GeneralEnabled  *bool `json:"generalEnabled"`
}

type NotificationListResponse struct {
	Notifications []*notification.Notification `json:"notifications"`
	Total         int                          `json:"total"`
	Page          int                          `json:"page"`
	PerPage       int                          `json:"perPage"`
}

// HandleRegisterDevice registers an FCM device token for the authenticated
// user (POST /api/notifications/register-device)
func (h *NotificationHandler) HandleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.notifications.RegisterDevice(r.Context(), notification.CreateDeviceTokenParams{
		UserID:     userID,
		Token:      req.Token,
		DeviceType: req.DeviceType,
	})
	if err != nil {
		switch {
		case errors.Is(err, notification.ErrInvalidToken), errors.Is(err, notification.ErrInvalidDeviceType):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Error registering device for user %d: %v", userID, err)
			http.Error(w, "Failed to register device", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, token)
}

// HandlePreferences handles notification preferences (GET, PUT)
func (h *NotificationHandler) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		prefs, err := h.notifications.GetPreferences(r.Context(), userID)
		if err != nil {
			log.Printf("Error getting preferences for user %d: %v", userID, err)
			http.Error(w, "Failed to get preferences", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, prefs)

	case http.MethodPut:
		var req UpdatePreferencesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		prefs, err := h.notifications.UpdatePreferences(r.Context(), userID, notification.UpdatePreferenceParams{
			BillsEnabled:    req.BillsEnabled,
			InvoicesEnabled: req.InvoicesEnabled,
			GeneralEnabled:  req.GeneralEnabled,
		})
		if err != nil {
			log.Printf("Error updating preferences for user %d: %v", userID, err)
			http.Error(w, "Failed to update preferences", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, prefs)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleListNotifications returns the paginated notification inbox
// (GET /api/notifications?page=&perPage=)
func (h *NotificationHandler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	notifications, total, err := h.notifications.ListNotifications(r.Context(), userID, page, perPage)
	if err != nil {
		log.Printf("Error listing notifications for user %d: %v", userID, err)
		http.Error(w, "Failed to list notifications", http.StatusInternalServerError)
		return
	}

	if notifications == nil {
		notifications = []*notification.Notification{}
	}
	writeJSON(w, http.StatusOK, NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		Page:          page,
		PerPage:       perPage,
	})
}

// HandleMarkOpened marks a notification as opened
// (POST /api/notifications/{id}/opened)
func (h *NotificationHandler) HandleMarkOpened(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	notificationID := r.PathValue("id")
	if notificationID == "" {
		http.Error(w, "Notification ID is required", http.StatusBadRequest)
		return
	}

	if err := h.notifications.MarkNotificationOpened(r.Context(), notificationID, userID); err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			http.Error(w, "Notification not found", http.StatusNotFound)
			return
		}
		log.Printf("Error marking notification %s opened: %v", notificationID, err)
		http.Error(w, "Failed to mark notification opened", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
