package asherr

import (
	"errors"
	"net/http"
)

// HTTPStatus maps an ASH error to the single HTTP status code and short
// machine-readable code spec.md §6/§7 assign it. This is the Go
// equivalent of the original backend's per-error IntoResponse
// implementation: one error maps to exactly one response. A missing,
// malformed, or wrong bearer token all get status 401; a missing
// header carries code MISSING_AUTH, while a malformed or wrong token
// shares the generic UNAUTHORIZED code, so those two cannot be told
// apart. An unknown conversation ID is reported separately as 404,
// per spec.md's own CONVERSATION_NOT_FOUND code.
func HTTPStatus(err error) (status int, code string) {
	switch {
	case errors.Is(err, ErrConversationNotFound):
		return http.StatusNotFound, "CONVERSATION_NOT_FOUND"
	case errors.Is(err, ErrConversationBurned):
		return http.StatusGone, "CONVERSATION_BURNED"
	case errors.Is(err, ErrMissingHeader):
		return http.StatusUnauthorized, "MISSING_AUTH"
	case errors.Is(err, ErrInvalidHeader):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrAuthenticationFailed):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, ErrQueueFull):
		return http.StatusTooManyRequests, "QUEUE_FULL"
	case errors.Is(err, ErrServerAtCapacity):
		return http.StatusServiceUnavailable, "SERVER_AT_CAPACITY"
	}

	// Input/framing errors, parameterized or not, all surface as 400.
	var (
		tooLarge      PayloadTooLargeError
		entropy       InvalidEntropySizeError
		insufficient  InsufficientPadBytesError
		lengthMismatch LengthMismatchError
		frameTooShort FrameTooShortError
		crcMismatch   CrcMismatchError
		indexOOB      FrameIndexOutOfBoundsError
		countMismatch FrameCountMismatchError
		missing       MissingFramesError
		duplicate     DuplicateFrameError
		fountainShort FountainBlockTooShortError
		frameLenMismatch FrameLengthMismatchError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"
	case errors.Is(err, ErrPadExhausted),
		errors.Is(err, ErrEmptyPayload),
		errors.Is(err, ErrPadTooSmallForTokens),
		errors.Is(err, ErrNoFrames),
		errors.Is(err, ErrZeroTotalFrames),
		errors.Is(err, ErrUnsupportedFrameVersion),
		errors.Is(err, ErrInvalidMessageType),
		errors.As(err, &entropy),
		errors.As(err, &insufficient),
		errors.As(err, &lengthMismatch),
		errors.As(err, &frameTooShort),
		errors.As(err, &crcMismatch),
		errors.As(err, &indexOOB),
		errors.As(err, &countMismatch),
		errors.As(err, &missing),
		errors.As(err, &duplicate),
		errors.As(err, &fountainShort),
		errors.As(err, &frameLenMismatch):
		return http.StatusBadRequest, "INVALID_INPUT"
	}

	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
