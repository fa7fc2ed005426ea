package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
// A zero Status is normalized to HTTP 200 by NewError; websocket-delivered
// errors ignore the HTTP status entirely.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrInvalidJSONFormat: {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Channel and Message Errors
	ErrUnknownChannel:     {Code: ErrUnknownChannel, Message: "Channel not found.", Status: http.StatusNotFound},
	ErrEmptyContent:       {Code: ErrEmptyContent, Message: "Message content cannot be empty."},
	ErrContentTooLong:     {Code: ErrContentTooLong, Message: "Message is too long."},
	ErrInvalidMessageType: {Code: ErrInvalidMessageType, Message: "Unsupported message type."},

	// 3xxx: Event Errors
	ErrUnknownEvent: {Code: ErrUnknownEvent, Message: "Event not found.", Status: http.StatusNotFound},
	ErrInvalidEvent: {Code: ErrInvalidEvent, Message: "Event title, date, and location are required."},

	// 4xxx: Session Errors
	ErrNotIdentified:     {Code: ErrNotIdentified, Message: "Join the platform before sending this request."},
	ErrAlreadyIdentified: {Code: ErrAlreadyIdentified, Message: "You have already joined."},
	ErrSessionReplaced:   {Code: ErrSessionReplaced, Message: "You connected from another device."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
