package domain

import "errors"

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrSeatAlreadyReserved = errors.New("seat(s) are already reserved")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrInvalidSignature    = errors.New("payment signature verification failed")
)
