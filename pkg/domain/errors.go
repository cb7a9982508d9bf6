package domain

import (
	"errors"
	"fmt"
)

// Kind は生成パイプラインのエラー種別です。
type Kind int

const (
	// KindValidation は呼び出し元のパラメータが制約に違反している場合です。
	KindValidation Kind = iota + 1
	// KindBackend はバックエンドや取得先への通信自体が失敗した場合です。
	KindBackend
	// KindGeneration は通信は成功したが、モデルが画像を返さなかった場合です（モデレーション等）。
	KindGeneration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindBackend:
		return "BackendError"
	case KindGeneration:
		return "GenerationFailure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error は種別付きのエラーです。Error() は人間向けのメッセージだけを返します。
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validationf は KindValidation のエラーを作成します。
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewBackendError は通信失敗を KindBackend として包みます。
func NewBackendError(message string, err error) *Error {
	return &Error{Kind: KindBackend, Message: message, Err: err}
}

// GenerationFailuref は KindGeneration のエラーを作成します。
func GenerationFailuref(format string, args ...any) *Error {
	return &Error{Kind: KindGeneration, Message: fmt.Sprintf(format, args...)}
}

// KindOf は err の種別を返します。種別付きでなければ 0 です。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind は err が指定した種別かどうかを判定します。
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
