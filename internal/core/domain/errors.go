package domain

import (
    "errors"
    "fmt"
)

type ErrorKind int

const (
    KindInvalidHex ErrorKind = iota + 1
    KindInvalidLength
    KindPadding
    KindDecode
    KindInvalidKey
)

func (k ErrorKind) String() string {
    switch k {
    case KindInvalidHex:
        return "InvalidHexError"
    case KindInvalidLength:
        return "InvalidLengthError"
    case KindPadding:
        return "PaddingError"
    case KindDecode:
        return "DecodeError"
    case KindInvalidKey:
        return "InvalidKeyError"
    default:
        return "UnknownError"
    }
}

// Error is the single error type returned by the decrypt path. Callers switch
// on Kind or match one of the sentinels below with errors.Is.
type Error struct {
    Kind ErrorKind
    Op   string
    Msg  string
    Err  error

    // Raw holds the decrypted bytes for KindDecode so they can still be shown.
    Raw []byte
}

var (
    ErrInvalidHex    = &Error{Kind: KindInvalidHex}
    ErrInvalidLength = &Error{Kind: KindInvalidLength}
    ErrPadding       = &Error{Kind: KindPadding}
    ErrDecode        = &Error{Kind: KindDecode}
    ErrInvalidKey    = &Error{Kind: KindInvalidKey}
)

func (e *Error) Error() string {
    msg := e.Kind.String()
    if e.Op != "" {
        msg = e.Op + ": " + msg
    }
    if e.Msg != "" {
        msg += ": " + e.Msg
    }
    if e.Err != nil {
        msg += ": " + e.Err.Error()
    }
    return msg
}

func (e *Error) Unwrap() error {
    return e.Err
}

// Is reports kind equality so that errors.Is(err, ErrPadding) works for any
// padding failure.
func (e *Error) Is(target error) bool {
    t, ok := target.(*Error)
    if !ok {
        return false
    }
    return t.Kind == e.Kind
}

func NewError(kind ErrorKind, op, format string, args ...interface{}) *Error {
    return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or 0 when err did not come from the decrypt path.
func KindOf(err error) ErrorKind {
    var e *Error
    if errors.As(err, &e) {
        return e.Kind
    }
    return 0
}
