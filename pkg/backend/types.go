package backend

import "time"

type LoginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	UserType    string `json:"userType"`
	DeviceToken string `json:"deviceToken,omitempty"`
}

type LoginResponse struct {
	ID          string `json:"id"`
	AuthCode    string `json:"authCode"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	UserType    string `json:"userType"`
	BranchID    string `json:"branchId,omitempty"`
	AccessToken string `json:"accessToken"`

	// Students is set for parent logins.
	Students []LinkedStudent `json:"students,omitempty"`
}

type LinkedStudent struct {
	ID       string `json:"id"`
	AuthCode string `json:"authCode"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Notification is a server-side notification as listed by the backend.
type Notification struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Type      string            `json:"type"`
	Data      map[string]string `json:"data,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"createdAt"`
}

type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}

type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type Statistics struct {
	Total  int            `json:"total"`
	Unread int            `json:"unread"`
	ByType map[string]int `json:"byType"`
}

type SendRequest struct {
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Type       string            `json:"type"`
	Priority   string            `json:"priority,omitempty"`
	Recipients []string          `json:"recipients,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
}

type SendBPSRequest struct {
	StudentAuthCode string `json:"studentAuthCode"`
	ItemType        string `json:"itemType"`
	ItemTitle       string `json:"itemTitle"`
	ItemPoint       int    `json:"itemPoint"`
	Note            string `json:"note,omitempty"`
}

type SendAttendanceReminderRequest struct {
	BranchID  string    `json:"branchId"`
	Subject   string    `json:"subject"`
	ClassTime time.Time `json:"classTime"`
}

type SendRichRequest struct {
	SendRequest
	ImageURL  string `json:"imageUrl,omitempty"`
	ActionURL string `json:"actionUrl,omitempty"`
}

type SendStaffRequest struct {
	SendRequest
	Department string `json:"department,omitempty"`
}

type SendResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Sent    int    `json:"sent"`
}
