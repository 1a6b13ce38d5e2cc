package user

type Filter struct {
	Limit  *int
	Offset *int
	Page   *int
	Search *string
}

type SignInRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type GetListResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	RoleID   int    `json:"role_id"`
	Role     string `json:"role"`
}

// SaveRequest creates a user when ID is zero and edits it otherwise. An
// empty password keeps the current one on edit.
type SaveRequest struct {
	ID       int    `json:"id"       form:"id"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	RoleID   int    `json:"role_id"  form:"role_id"`
}

type ChangePasswordRequest struct {
	UserID          int    `json:"user_id"          form:"user_id"`
	NewPassword     string `json:"new_password"     form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}
