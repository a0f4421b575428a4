package common

const (
	ErrCodeBadRequestInvalidBody = "bad_request.body.invalid"
	ErrCodeUnauthorized          = "unauthorized"
	ErrCodeTooManyRequests       = "too_many_requests"
	ErrCodeNotFoundNotification  = "not_found.notification"
	ErrCodeFetchFailed           = "fetch.failed"
	ErrCodeFetchSuperseded       = "fetch.superseded"
	ErrCodeNotLive               = "connection.not_live"
	ErrCodeClosed                = "connection.closed"
	ErrCodeBrokerUnreachable     = "broker.unreachable"
	ErrCodeInternal              = "internal"
)

var (
	ErrBadRequestInvalidBody = MonitorError{Code: ErrCodeBadRequestInvalidBody}
	ErrTooManyRequests       = MonitorError{Code: ErrCodeTooManyRequests}
	ErrNotFoundNotification  = MonitorError{Code: ErrCodeNotFoundNotification}
	ErrFetchFailed           = MonitorError{Code: ErrCodeFetchFailed}
	ErrFetchSuperseded       = MonitorError{Code: ErrCodeFetchSuperseded}
	ErrNotLive               = MonitorError{Code: ErrCodeNotLive}
	ErrClosed                = MonitorError{Code: ErrCodeClosed}
	ErrBrokerUnreachable     = MonitorError{Code: ErrCodeBrokerUnreachable}
	ErrInternal              = MonitorError{Code: ErrCodeInternal}
)

type MonitorError struct {
	Code string
}

func (me MonitorError) Error() string {
	return me.Code
}
