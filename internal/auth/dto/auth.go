package dto

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	UserType string `json:"user_type" binding:"required,oneof=teacher student parent"`
}

type LogoutRequest struct {
	ClearDeviceToken bool `json:"clear_device_token"`
	ClearAllData     bool `json:"clear_all_data"`
}
