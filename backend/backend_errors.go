package backend

import "errors"

var (
	InvalidCredentialsErr   = errors.New("invalid credentials")
	RefreshFailedErr        = errors.New("token refresh failed")
	ProfileFetchFailedErr   = errors.New("profile fetch failed")
	ProfileUpdateFailedErr  = errors.New("profile update failed")
	PasswordChangeFailedErr = errors.New("password change failed")
	RegistrationFailedErr   = errors.New("registration failed")
)
