package service

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidEmail           = errors.New("invalid email")
	ErrInvalidPassword        = errors.New("incorrect password")
	ErrEmailTaken             = errors.New("this email already exists")
	ErrOTPNotRequested        = errors.New("otp not found or already verified")
	ErrOTPInvalid             = errors.New("invalid otp")
	ErrOTPExpired             = errors.New("otp has expired")
	ErrResetTokenInvalid      = errors.New("invalid or expired token")
	ErrResetTokenExpired      = errors.New("token has expired")
	ErrEmailSendFailure       = errors.New("email send failed")
	ErrRateLimited            = errors.New("rate limited")
	ErrServiceRequestNotFound = errors.New("service request not found")
	ErrInvalidRequestType     = errors.New("invalid request type")
	ErrInvalidStatus          = errors.New("invalid service request status")
	ErrTooManyImages          = errors.New("too many images")
	ErrInvalidDate            = errors.New("invalid date format")
	ErrInvalidSlot            = errors.New("invalid date or time format")
	ErrSlotTaken              = errors.New("this slot is already booked")
	ErrInvalidMinutes         = errors.New("total minutes must be greater than zero")
	ErrMessageRequired        = errors.New("message is required")
)
