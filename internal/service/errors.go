package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid      = errors.New("参数错误")
	ErrEntityNotFound    = errors.New("实体不存在")
	ErrUnsupportedEntity = errors.New("不支持的实体类型")
	UnauthorizedError    = errors.New("权限不足")
	UnExpectedError      = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:      BadRequest,
	ErrEntityNotFound:    NotFound,
	ErrUnsupportedEntity: BadRequest,
	UnauthorizedError:    Unauthorized,
	UnExpectedError:      InternalServerError,
}

// ErrorCode 按 errors.Is 匹配哨兵错误，未知错误返回 false
func ErrorCode(err error) (error, int, bool) {
	for sentinel, code := range ErrorMap {
		if errors.Is(err, sentinel) {
			return sentinel, code, true
		}
	}
	return nil, InternalServerError, false
}
