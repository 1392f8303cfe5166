package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEnumValue ErrorCode = "INVALID_ENUM_VALUE"
	ErrCodeInvalidFrequency ErrorCode = "INVALID_FREQUENCY"
	ErrCodeMissingDepartment ErrorCode = "EQUIPMENT_WITHOUT_DEPARTMENT"

	ErrCodeUserNotFound          ErrorCode = "USER_NOT_FOUND"
	ErrCodeDepartmentNotFound    ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeSupplierNotFound      ErrorCode = "SUPPLIER_NOT_FOUND"
	ErrCodeEquipmentNotFound     ErrorCode = "EQUIPMENT_NOT_FOUND"
	ErrCodeTicketNotFound        ErrorCode = "TICKET_NOT_FOUND"
	ErrCodeServiceReportNotFound ErrorCode = "SERVICE_REPORT_NOT_FOUND"
	ErrCodeScheduleNotFound      ErrorCode = "MAINTENANCE_SCHEDULE_NOT_FOUND"
	ErrCodeNotificationNotFound  ErrorCode = "NOTIFICATION_NOT_FOUND"

	ErrCodeMissingCapability ErrorCode = "MISSING_CAPABILITY"
	ErrCodeSelfDelete        ErrorCode = "CANNOT_DELETE_OWN_ACCOUNT"

	ErrCodeDuplicateEmail          ErrorCode = "DUPLICATE_EMAIL"
	ErrCodeDuplicateAssetTag       ErrorCode = "DUPLICATE_ASSET_TAG"
	ErrCodeDuplicateDepartment     ErrorCode = "DUPLICATE_DEPARTMENT"
	ErrCodeDuplicateSupplier       ErrorCode = "DUPLICATE_SUPPLIER"
	ErrCodeTicketCodeExhausted     ErrorCode = "TICKET_CODE_EXHAUSTED"
	ErrCodeDuplicateServiceReport  ErrorCode = "DUPLICATE_SERVICE_REPORT"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Messages() string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return strings.Join(messages, "; ")
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewMissingCapabilityError reports an authorization failure carrying the
// specific capability the caller lacks, never a generic denial.
func NewMissingCapabilityError(capability string) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       ErrCodeMissingCapability,
		Message:    fmt.Sprintf("missing capability: %s", capability),
		StatusCode: http.StatusForbidden,
		Details:    map[string]string{"required_capability": capability},
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause ...error) *AppError {
	appErr := &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
	if len(cause) > 0 {
		appErr.Cause = cause[0]
	}
	return appErr
}

var (
	ErrUserNotFound          = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrDepartmentNotFound    = NewNotFoundError("Department not found", ErrCodeDepartmentNotFound)
	ErrSupplierNotFound      = NewNotFoundError("Supplier not found", ErrCodeSupplierNotFound)
	ErrEquipmentNotFound     = NewNotFoundError("Equipment not found", ErrCodeEquipmentNotFound)
	ErrTicketNotFound        = NewNotFoundError("Ticket not found", ErrCodeTicketNotFound)
	ErrServiceReportNotFound = NewNotFoundError("Service report not found", ErrCodeServiceReportNotFound)
	ErrScheduleNotFound      = NewNotFoundError("Maintenance schedule not found", ErrCodeScheduleNotFound)
	ErrNotificationNotFound  = NewNotFoundError("Notification not found", ErrCodeNotificationNotFound)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
