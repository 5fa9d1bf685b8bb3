package domain

import (
	errprocess "chat_relay_service/pkg/err"
)

// 錯誤分類
var (
	ErrValidation       = errprocess.ErrValidation
	ErrNotFound         = errprocess.ErrNotFound
	ErrDuplicateMessage = errprocess.ErrDuplicate
	ErrPersistence      = errprocess.ErrPersistence
	ErrUnauthorized     = errprocess.ErrUnauthorized
)

// Client facing errors.
var (
	ErrTargetRequired  = errprocess.New(ErrValidation, "chat_id or recipient_id required")
	ErrEmptyText       = errprocess.New(ErrValidation, "text must not be empty")
	ErrChatNotFound    = errprocess.New(ErrNotFound, "Chat not found")
	ErrMessageNotFound = errprocess.New(ErrNotFound, "Message not found")
	ErrDuplicate       = errprocess.New(ErrDuplicateMessage, "Duplicate message")
)
