package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request or intent parameter validation failed.
	ErrInvalidParams = 1001

	// ErrInvalidJSONFormat indicates a malformed JSON body or intent payload.
	ErrInvalidJSONFormat = 1002

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1003
)

// 2xxx: Channel and Message Errors
const (
	// ErrUnknownChannel indicates a message referenced a channel id with no matching channel.
	ErrUnknownChannel = 2101

	// ErrEmptyContent indicates message content was blank after trimming.
	ErrEmptyContent = 2201

	// ErrContentTooLong indicates message content exceeded the maximum length limit.
	ErrContentTooLong = 2202

	// ErrInvalidMessageType indicates an unsupported message kind.
	ErrInvalidMessageType = 2203
)

// 3xxx: Event Errors
const (
	// ErrUnknownEvent indicates an attendance change referenced a nonexistent event.
	ErrUnknownEvent = 3101

	// ErrInvalidEvent indicates event creation with a blank title, date, or location.
	ErrInvalidEvent = 3102
)

// 4xxx: Session Errors
const (
	// ErrNotIdentified indicates a mutating intent arrived before a successful join.
	ErrNotIdentified = 4001

	// ErrAlreadyIdentified indicates a join intent on a connection that already joined.
	ErrAlreadyIdentified = 4002

	// ErrSessionReplaced indicates the connection was closed because the same
	// logical user connected elsewhere.
	ErrSessionReplaced = 4003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000
)
