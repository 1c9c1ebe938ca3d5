package service

import "errors"

// DomainError is a terminal, expected failure of a reservation operation.
// Everything else that comes out of the service is an infrastructure error
// and is left for the transport layer's catch-all.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

var (
	ErrInvalidRequestFormat = &DomainError{Code: "invalid_request_format", Message: "room and seat are required"}
	ErrInvalidApplyTime     = &DomainError{Code: "invalid_apply_time", Message: "outside the borrow window"}
	ErrBorrowBlocked        = &DomainError{Code: "borrow_blocked", Message: "user is blocked from borrowing"}
	ErrReservedUser         = &DomainError{Code: "reserved_user", Message: "user already holds a seat today"}
	ErrReservedSeat         = &DomainError{Code: "reserved_seat", Message: "seat is already taken today"}
	ErrInvalidRoom          = &DomainError{Code: "invalid_room", Message: "unknown room"}
	ErrNotBorrowed          = &DomainError{Code: "not_borrowed", Message: "no reservation to modify"}
)

// AsDomainError unwraps a DomainError if err is one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
