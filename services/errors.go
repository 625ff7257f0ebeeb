package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindStore        Kind = "store"
)

// Error 是回傳給呼叫端的單一錯誤，Message 可直接顯示給使用者
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Store(message string, err error) *Error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}

// KindOf 非 *Error 的錯誤一律視為資料庫錯誤
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

var (
	ErrDishUnavailable  = NotFound("some dishes are unavailable")
	ErrAddressNotOwned  = NotFound("address not found or not owned by customer")
	ErrInvalidCode      = &Error{Kind: KindUnauthorized, Message: "invalid verification code"}
	ErrEmptyOrder       = Validation("order must contain at least one item")
	ErrInvalidQuantity  = Validation("quantity must be at least 1")
	ErrQuantityTooLarge = Validation("quantity must not exceed 10000 per dish")
	ErrInvalidPhone     = Validation("phone must have 10 to 32 characters")
	ErrInvalidDishID    = Validation("dishId must be positive")
	ErrCategoryNotFound = NotFound("category not found")
	ErrDishNotFound     = NotFound("dish not found")
	ErrOrderNotFound    = NotFound("order not found")
	ErrInvalidStatus    = Validation("invalid order status")
)

// isDuplicateKey 判斷是否違反唯一索引，各資料庫驅動的錯誤型別不同
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
