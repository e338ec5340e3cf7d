package dto

// StaffLoginRequest describes login/password payload.
type StaffLoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
