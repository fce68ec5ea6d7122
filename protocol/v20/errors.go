package v20

import "fmt"

// ErrorType enumerates the error codes a HID++2.0 device returns when a
// feature function call fails.
type ErrorType byte

const (
	NoError             ErrorType = 0
	Unknown             ErrorType = 1
	InvalidArgument     ErrorType = 2
	OutOfRange          ErrorType = 3
	HwError             ErrorType = 4
	LogitechInternal    ErrorType = 5
	InvalidFeatureIndex ErrorType = 6
	InvalidFunctionId   ErrorType = 7
	Busy                ErrorType = 8
	Unsupported         ErrorType = 9
)

var errorTypeNames = map[ErrorType]string{
	NoError:             "no error",
	Unknown:             "unknown",
	InvalidArgument:     "invalid argument",
	OutOfRange:          "out of range",
	HwError:             "hardware error",
	LogitechInternal:    "logitech internal error",
	InvalidFeatureIndex: "invalid feature index",
	InvalidFunctionId:   "invalid function id",
	Busy:                "busy",
	Unsupported:         "unsupported",
}

func (e ErrorType) String() string {
	if name, ok := errorTypeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%#02x)", byte(e))
}

// ParseErrorType translates a raw error code byte into an ErrorType,
// failing for codes outside the documented table.
func ParseErrorType(code byte) (ErrorType, error) {
	if _, ok := errorTypeNames[ErrorType(code)]; !ok {
		return 0, fmt.Errorf("v20: undocumented error code %#02x", code)
	}
	return ErrorType(code), nil
}

// FeatureError indicates a v2.0 feature function call was rejected by the
// device with a documented ErrorType.
type FeatureError struct {
	Code ErrorType
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("v20: feature call failed: %s", e.Code)
}

// UnsupportedResponseError indicates a response failed a documented
// invariant (undocumented error code, malformed payload, invalid UTF-8
// where required).
type UnsupportedResponseError struct{ reason string }

func (e *UnsupportedResponseError) Error() string {
	return fmt.Sprintf("v20: unsupported response: %s", e.reason)
}

func NewUnsupportedResponseError(reason string) *UnsupportedResponseError {
	return &UnsupportedResponseError{reason: reason}
}
