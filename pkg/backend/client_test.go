package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RemoveDevice(t *testing.T) {
	var gotQuery, gotAuth, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil).WithAccessToken(context.Background(), "abc")
	require.NoError(t, c.RemoveDevice(context.Background(), "u1", "tok"))

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "device_token=tok&user_id=u1", gotQuery)
	assert.Equal(t, "Bearer abc", gotAuth)
}

func TestClient_NonSuccessIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).Login(context.Background(), LoginRequest{Username: "a", Password: "b", UserType: "teacher"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "/login/teacher", apiErr.Path)
}

func TestClient_SendRichAndStaff(t *testing.T) {
	tests := []struct {
		name string
		path string
		send func(c *Client) (*SendResponse, error)
		want map[string]interface{}
	}{
		{
			name: "rich",
			path: "/notifications/send/rich",
			send: func(c *Client) (*SendResponse, error) {
				return c.SendRich(context.Background(), SendRichRequest{
					SendRequest: SendRequest{Title: "Trip", Body: "Photos", Type: "announcement"},
					ImageURL:    "https://cdn.example/trip.jpg",
				})
			},
			want: map[string]interface{}{"title": "Trip", "imageUrl": "https://cdn.example/trip.jpg"},
		},
		{
			name: "staff",
			path: "/notifications/send/staff",
			send: func(c *Client) (*SendResponse, error) {
				return c.SendStaff(context.Background(), SendStaffRequest{
					SendRequest: SendRequest{Title: "Meeting", Body: "3pm"},
					Department:  "science",
				})
			},
			want: map[string]interface{}{"title": "Meeting", "department": "science"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotMethod string
			var body map[string]interface{}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotMethod = r.Method
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				_ = json.NewEncoder(w).Encode(SendResponse{Success: true, Sent: 4})
			}))
			defer srv.Close()

			resp, err := tt.send(NewClient(srv.URL, nil))
			require.NoError(t, err)
			assert.Equal(t, 4, resp.Sent)
			assert.Equal(t, http.MethodPost, gotMethod)
			assert.Equal(t, tt.path, gotPath)
			for k, v := range tt.want {
				assert.Equal(t, v, body[k], k)
			}
		})
	}
}

func TestClient_LoginAndList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login/student", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tok-1", req.DeviceToken)
		_ = json.NewEncoder(w).Encode(LoginResponse{ID: "s1", AuthCode: "AUTH", Username: req.Username, AccessToken: "jwt"})
	})
	mux.HandleFunc("/api/notifications", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_ = json.NewEncoder(w).Encode(NotificationList{
			Notifications: []Notification{{ID: "n1", Title: "Hi"}},
			UnreadCount:   1,
		})
	})
	mux.HandleFunc("/api/notifications/send/bps", func(w http.ResponseWriter, r *http.Request) {
		var req SendBPSRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, -5, req.ItemPoint)
		_ = json.NewEncoder(w).Encode(SendResponse{Success: true, Sent: 1})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL+"/api/", nil)
	ctx := context.Background()

	login, err := c.Login(ctx, LoginRequest{Username: "kid", Password: "pw", UserType: "student", DeviceToken: "tok-1"})
	require.NoError(t, err)
	assert.Equal(t, "AUTH", login.AuthCode)

	list, err := c.ListNotifications(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, 1, list.UnreadCount)

	sent, err := c.SendBPS(ctx, SendBPSRequest{StudentAuthCode: "AUTH", ItemType: "dps", ItemPoint: -5})
	require.NoError(t, err)
	assert.True(t, sent.Success)
}
