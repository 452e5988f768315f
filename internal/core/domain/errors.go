package domain

import "errors"

var (
	ErrListingNotFound         = errors.New("listing not found")
	ErrInvalidStatusTransition = errors.New("invalid listing status transition")
	ErrInvalidInquiry          = errors.New("invalid inquiry")
	ErrKeyNotFound             = errors.New("storage key not found")
)

// ErrInvalidListingID - пустой или некорректный идентификатор объявления во входных данных.
var ErrInvalidListingID = errors.New("invalid listing id")
