package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Login checks teacher/student credentials.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	path := "/login/student"
	if req.UserType == "teacher" {
		path = "/login/teacher"
	}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveDevice asks the backend to stop pushing to deviceToken for userID.
func (c *Client) RemoveDevice(ctx context.Context, userID, deviceToken string) error {
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("device_token", deviceToken)
	return c.do(ctx, http.MethodDelete, "/device", q, nil, nil)
}

func (c *Client) ListNotifications(ctx context.Context, page, limit int) (*NotificationList, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp NotificationList
	if err := c.do(ctx, http.MethodGet, "/notifications", q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/notifications/"+url.PathEscape(id)+"/read", nil, nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/notifications/read-all", nil, nil, nil)
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var resp struct {
		Categories []Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/notifications/categories", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *Client) Statistics(ctx context.Context) (*Statistics, error) {
	var resp Statistics
	if err := c.do(ctx, http.MethodGet, "/notifications/statistics", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Send(ctx context.Context, req SendRequest) (*SendResponse, error) {
	return c.send(ctx, "/notifications/send", req)
}

func (c *Client) SendBPS(ctx context.Context, req SendBPSRequest) (*SendResponse, error) {
	return c.send(ctx, "/notifications/send/bps", req)
}

func (c *Client) SendAttendanceReminder(ctx context.Context, req SendAttendanceReminderRequest) (*SendResponse, error) {
	return c.send(ctx, "/notifications/send/attendance-reminder", req)
}

func (c *Client) SendRich(ctx context.Context, req SendRichRequest) (*SendResponse, error) {
	return c.send(ctx, "/notifications/send/rich", req)
}

func (c *Client) SendStaff(ctx context.Context, req SendStaffRequest) (*SendResponse, error) {
	return c.send(ctx, "/notifications/send/staff", req)
}

func (c *Client) send(ctx context.Context, path string, req interface{}) (*SendResponse, error) {
	var resp SendResponse
	if err := c.do(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
