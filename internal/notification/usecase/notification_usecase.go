package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"schoolapp/internal/device"
	"schoolapp/internal/notification/domain"
	notificationdto "schoolapp/internal/notification/dto"
	"schoolapp/internal/notification/history"
	"schoolapp/internal/notification/router"
	"schoolapp/internal/session"
	"schoolapp/pkg/backend"
)

var ErrNotLoggedIn = errors.New("no user is logged in")

// Remote is the backend notification API for one access token.
type Remote interface {
	ListNotifications(ctx context.Context, page, limit int) (*backend.NotificationList, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	Categories(ctx context.Context) ([]backend.Category, error)
	Statistics(ctx context.Context) (*backend.Statistics, error)
	Send(ctx context.Context, req backend.SendRequest) (*backend.SendResponse, error)
	SendBPS(ctx context.Context, req backend.SendBPSRequest) (*backend.SendResponse, error)
	SendAttendanceReminder(ctx context.Context, req backend.SendAttendanceReminderRequest) (*backend.SendResponse, error)
	SendRich(ctx context.Context, req backend.SendRichRequest) (*backend.SendResponse, error)
	SendStaff(ctx context.Context, req backend.SendStaffRequest) (*backend.SendResponse, error)
}

// RemoteFactory returns the backend API authorized with accessToken.
type RemoteFactory func(ctx context.Context, accessToken string) Remote

// MessageRouter is satisfied by *router.Router.
type MessageRouter interface {
	HandleForeground(ctx context.Context, msg domain.Message) router.Delivery
	HandleOpened(ctx context.Context, msg domain.Message) router.Destination
}

type notificationUsecase struct {
	history  *history.Store
	sessions *session.Repository
	remote   RemoteFactory
	router   MessageRouter
	badge    device.Badge
	now      func() time.Time
}

// NewNotificationUsecase wires the notification operations. badge may be nil.
func NewNotificationUsecase(historyStore *history.Store, sessions *session.Repository, remote RemoteFactory, messageRouter MessageRouter, badge device.Badge) NotificationUsecase {
	return &notificationUsecase{
		history:  historyStore,
		sessions: sessions,
		remote:   remote,
		router:   messageRouter,
		badge:    badge,
		now:      time.Now,
	}
}

func (u *notificationUsecase) History(ctx context.Context) (*notificationdto.HistoryResponse, error) {
	records, err := u.history.List(ctx)
	if err != nil {
		return nil, err
	}
	unread := 0
	for _, r := range records {
		if !r.Read {
			unread++
		}
	}
	return &notificationdto.HistoryResponse{Notifications: records, UnreadCount: unread}, nil
}

func (u *notificationUsecase) MarkRead(ctx context.Context, id string) error {
	if err := u.history.MarkRead(ctx, id); err != nil {
		return err
	}
	u.syncBadge(ctx)
	return nil
}

func (u *notificationUsecase) MarkAllRead(ctx context.Context) error {
	if err := u.history.MarkAllRead(ctx); err != nil {
		return err
	}
	u.syncBadge(ctx)
	return nil
}

func (u *notificationUsecase) ClearHistory(ctx context.Context) error {
	if err := u.history.Clear(ctx); err != nil {
		return err
	}
	u.syncBadge(ctx)
	return nil
}

// syncBadge sets the app icon badge to the local unread count.
func (u *notificationUsecase) syncBadge(ctx context.Context) {
	if u.badge == nil {
		return
	}
	n, err := u.history.UnreadCount(ctx)
	if err != nil {
		log.Printf("[Notification] Failed to count unread notifications: %v", err)
		return
	}
	if err := u.badge.SetBadgeCount(ctx, n); err != nil {
		log.Printf("[Notification] Failed to set badge count: %v", err)
	}
}

func (u *notificationUsecase) client(ctx context.Context) (Remote, error) {
	user, err := u.sessions.Current(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}
	return u.remote(ctx, user.AccessToken), nil
}

func (u *notificationUsecase) Remote(ctx context.Context, page, limit int) (*backend.NotificationList, error) {
	c, err := u.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListNotifications(ctx, page, limit)
}

func (u *notificationUsecase) MarkRemoteRead(ctx context.Context, id string) error {
	c, err := u.client(ctx)
	if err != nil {
		return err
	}
	return c.MarkNotificationRead(ctx, id)
}

func (u *notificationUsecase) MarkAllRemoteRead(ctx context.Context) error {
	c, err := u.client(ctx)
	if err != nil {
		return err
	}
	return c.MarkAllNotificationsRead(ctx)
}

func (u *notificationUsecase) Categories(ctx context.Context) ([]backend.Category, error) {
	c, err := u.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.Categories(ctx)
}

func (u *notificationUsecase) Statistics(ctx context.Context) (*backend.Statistics, error) {
	c, err := u.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.Statistics(ctx)
}

// SendAndRecord asks the backend to push the notification and then records it
// locally. If the push also reaches this device in the foreground the history
// holds it twice.
func (u *notificationUsecase) SendAndRecord(ctx context.Context, req *notificationdto.SendRequest) (*notificationdto.SendResponse, error) {
	c, err := u.client(ctx)
	if err != nil {
		return nil, err
	}

	sendReq := toBackendSend(req)
	notifType := sendReq.Type
	resp, err := c.Send(ctx, sendReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send notification: %w", err)
	}

	data := make(map[string]string, len(req.Data)+1)
	for k, v := range req.Data {
		data[k] = v
	}
	data["type"] = notifType
	rec := domain.NewRecord(req.Title, req.Body, data, u.now())
	if err := u.history.Append(ctx, rec); err != nil {
		log.Printf("[Notification] Sent %q but failed to record it: %v", req.Title, err)
	} else {
		u.syncBadge(ctx)
	}

	return &notificationdto.SendResponse{Success: resp.Success, Sent: resp.Sent, Record: rec}, nil
}

func (u *notificationUsecase) SendBPS(ctx context.Context, req *notificationdto.SendBPSRequest) (*backend.SendResponse, error) {
	c, err := u.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.SendBPS(ctx, backend.SendBPSRequest{
		StudentAuthCode: req.StudentAuthCode,
		ItemType:        req.ItemType,
		ItemTitle:       req.ItemTitle,
		ItemPoint:       req.ItemPoint,
		Note:            req.Note,
	})
}

func (u *notificationUsecase) SendAttendanceReminder(ctx context.Context, req *notificationdto.SendAttendanceReminderRequest) (*backend.SendResponse, error) {
	c, err := u.client(ctx)
	if err != nil {
		return nil, err
	}
	branchID := req.BranchID
	if branchID == "" {
		if user, err := u.sessions.Current(ctx); err == nil {
			branchID = user.BranchID
		}
	}
	return c.SendAttendanceReminder(ctx, backend.SendAttendanceReminderRequest{
		BranchID:  branchID,
		Subject:   req.Subject,
		ClassTime: req.ClassTime,
	})
}

func (u *notificationUsecase) SendRich(ctx context.Context, req *notificationdto.SendRichRequest) (*backend.SendResponse, error) {
	c, err := u.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.SendRich(ctx, backend.SendRichRequest{
		SendRequest: toBackendSend(&req.SendRequest),
		ImageURL:    req.ImageURL,
		ActionURL:   req.ActionURL,
	})
}

// SendStaff sends to staff members only; nothing is recorded locally.
func (u *notificationUsecase) SendStaff(ctx context.Context, req *notificationdto.SendStaffRequest) (*backend.SendResponse, error) {
	c, err := u.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.SendStaff(ctx, backend.SendStaffRequest{
		SendRequest: toBackendSend(&req.SendRequest),
		Department:  req.Department,
	})
}

func toBackendSend(req *notificationdto.SendRequest) backend.SendRequest {
	return backend.SendRequest{
		Title:      req.Title,
		Body:       req.Body,
		Type:       string(domain.ParseType(req.Type)),
		Priority:   req.Priority,
		Recipients: req.Recipients,
		Data:       req.Data,
	}
}

func (u *notificationUsecase) Receive(ctx context.Context, msg *notificationdto.InboundMessage) *notificationdto.ReceiveResponse {
	if msg.Event == "opened" {
		dest := u.router.HandleOpened(ctx, msg.Message)
		return &notificationdto.ReceiveResponse{Event: "opened", Destination: string(dest)}
	}

	d := u.router.HandleForeground(ctx, msg.Message)
	if d.Stored {
		u.syncBadge(ctx)
	}
	return &notificationdto.ReceiveResponse{
		Event:    "foreground",
		RecordID: d.RecordID,
		Display:  string(d.Display),
		Stored:   d.Stored,
	}
}
