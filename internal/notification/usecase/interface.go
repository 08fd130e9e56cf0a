package usecase

import (
	"context"

	notificationdto "schoolapp/internal/notification/dto"
	"schoolapp/pkg/backend"
)

// NotificationUsecase defines the notification operations exposed to the
// control API
type NotificationUsecase interface {
	// Local history
	History(ctx context.Context) (*notificationdto.HistoryResponse, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	ClearHistory(ctx context.Context) error

	// Backend notifications for the logged-in user
	Remote(ctx context.Context, page, limit int) (*backend.NotificationList, error)
	MarkRemoteRead(ctx context.Context, id string) error
	MarkAllRemoteRead(ctx context.Context) error
	Categories(ctx context.Context) ([]backend.Category, error)
	Statistics(ctx context.Context) (*backend.Statistics, error)

	// Sending. SendAndRecord also appends the sent message to local history.
	SendAndRecord(ctx context.Context, req *notificationdto.SendRequest) (*notificationdto.SendResponse, error)
	SendBPS(ctx context.Context, req *notificationdto.SendBPSRequest) (*backend.SendResponse, error)
	SendAttendanceReminder(ctx context.Context, req *notificationdto.SendAttendanceReminderRequest) (*backend.SendResponse, error)
	SendRich(ctx context.Context, req *notificationdto.SendRichRequest) (*backend.SendResponse, error)
	SendStaff(ctx context.Context, req *notificationdto.SendStaffRequest) (*backend.SendResponse, error)

	// Inbound push messages
	Receive(ctx context.Context, msg *notificationdto.InboundMessage) *notificationdto.ReceiveResponse
}
