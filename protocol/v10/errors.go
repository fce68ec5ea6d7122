package v10

import "fmt"

// MessageType enumerates the sub-IDs defined globally across all HID++1.0
// devices. Individual devices (receivers, in particular) define additional
// sub-IDs of their own.
type MessageType byte

const (
	SetRegister     MessageType = 0x80
	GetRegister     MessageType = 0x81
	SetLongRegister MessageType = 0x82
	GetLongRegister MessageType = 0x83
	ErrorReply      MessageType = 0x8F
)

// ErrorType enumerates the error codes a HID++1.0 device returns as part
// of an ErrorReply message.
type ErrorType byte

const (
	Success            ErrorType = 0x00
	InvalidSubId       ErrorType = 0x01
	InvalidAddress     ErrorType = 0x02
	InvalidValue       ErrorType = 0x03
	ConnectFail        ErrorType = 0x04
	TooManyDevices     ErrorType = 0x05
	AlreadyExists      ErrorType = 0x06
	Busy               ErrorType = 0x07
	UnknownDevice      ErrorType = 0x08
	ResourceError      ErrorType = 0x09
	RequestUnavailable ErrorType = 0x0a
	InvalidParamValue  ErrorType = 0x0b
	WrongPinCode       ErrorType = 0x0c
)

var errorTypeNames = map[ErrorType]string{
	Success:            "success",
	InvalidSubId:       "invalid sub-id",
	InvalidAddress:     "invalid address",
	InvalidValue:       "invalid value",
	ConnectFail:        "connect failed",
	TooManyDevices:     "too many devices",
	AlreadyExists:      "already exists",
	Busy:               "busy",
	UnknownDevice:      "unknown device",
	ResourceError:      "resource error",
	RequestUnavailable: "request unavailable",
	InvalidParamValue:  "invalid parameter value",
	WrongPinCode:       "wrong pin code",
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
		return 0, fmt.Errorf("v10: undocumented error code %#02x", code)
	}
	return ErrorType(code), nil
}

// RegisterAccessError indicates a register read/write was rejected by the
// device with a documented ErrorType.
type RegisterAccessError struct {
	Code ErrorType
}

func (e *RegisterAccessError) Error() string {
	return fmt.Sprintf("v10: register access failed: %s", e.Code)
}

// UnsupportedResponseError indicates a response failed a documented
// invariant (undocumented error code, malformed payload).
type UnsupportedResponseError struct{ reason string }

func (e *UnsupportedResponseError) Error() string {
	return fmt.Sprintf("v10: unsupported response: %s", e.reason)
}
