package domain

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrRoomLocked     = errors.New("room is locked")
	ErrRoomFull       = errors.New("room is full")
	ErrForbidden      = errors.New("forbidden")
	ErrCodeExhausted  = errors.New("invite code space exhausted")
)
