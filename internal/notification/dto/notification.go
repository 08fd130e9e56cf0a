package dto

import (
	"time"

	"schoolapp/internal/notification/domain"
)

type HistoryResponse struct {
	Notifications []domain.Record `json:"notifications"`
	UnreadCount   int             `json:"unreadCount"`
}

// SendRequest is the demo send: the backend pushes it and the device records it.
type SendRequest struct {
	Title      string            `json:"title" binding:"required"`
	Body       string            `json:"body" binding:"required"`
	Type       string            `json:"type"`
	Priority   string            `json:"priority"`
	Recipients []string          `json:"recipients"`
	Data       map[string]string `json:"data"`
}

type SendResponse struct {
	Success bool          `json:"success"`
	Sent    int           `json:"sent"`
	Record  domain.Record `json:"record"`
}

type SendRichRequest struct {
	SendRequest
	ImageURL  string `json:"imageUrl"`
	ActionURL string `json:"actionUrl"`
}

type SendStaffRequest struct {
	SendRequest
	Department string `json:"department"`
}

type SendBPSRequest struct {
	StudentAuthCode string `json:"studentAuthCode" binding:"required"`
	ItemType        string `json:"itemType" binding:"required"`
	ItemTitle       string `json:"itemTitle" binding:"required"`
	ItemPoint       int    `json:"itemPoint"`
	Note            string `json:"note"`
}

type SendAttendanceReminderRequest struct {
	BranchID  string    `json:"branchId"`
	Subject   string    `json:"subject" binding:"required"`
	ClassTime time.Time `json:"classTime" binding:"required"`
}

// InboundMessage feeds a push message to the router as the platform would.
type InboundMessage struct {
	Event   string         `json:"event"` // "foreground" (default) or "opened"
	Message domain.Message `json:"message"`
}

type ReceiveResponse struct {
	Event       string `json:"event"`
	RecordID    string `json:"recordId,omitempty"`
	Display     string `json:"display,omitempty"`
	Stored      bool   `json:"stored"`
	Destination string `json:"destination,omitempty"`
}

type ScheduleGradeRequest struct {
	Subject   string `json:"subject" binding:"required"`
	GradeType string `json:"gradeType"`
	Grade     string `json:"grade" binding:"required"`
	StudentID string `json:"studentId"`
}

type ScheduleBPSRequest struct {
	ItemType  string `json:"itemType" binding:"required"`
	ItemTitle string `json:"itemTitle" binding:"required"`
	ItemPoint int    `json:"itemPoint"`
	Note      string `json:"note"`
	StudentID string `json:"studentId"`
}

type ScheduleAnnouncementRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body" binding:"required"`
	Priority string `json:"priority"`
}

type ScheduleClassReminderRequest struct {
	Subject   string    `json:"subject" binding:"required"`
	ClassTime time.Time `json:"classTime" binding:"required"`
}

type ScheduleResponse struct {
	ID      string `json:"id,omitempty"`
	Outcome string `json:"outcome"`
}
