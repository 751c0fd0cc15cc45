package xe

import (
	"errors"
	"fmt"

	"github.com/go-orz/orz"
)

var (
	ErrInvalidParams = orz.NewError(10400, "参数无效")
	ErrInvalidPeriod = orz.NewError(10401, "不支持的回撤周期")

	// NotFound 类错误
	ErrAccountNotFound = orz.NewError(10404, "交易账户不存在")
	ErrRecordNotFound  = orz.NewError(10406, "回撤记录不存在")

	// Unavailable 类错误
	ErrStoreUnavailable = orz.NewError(10503, "存储暂不可用")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrRecordNotFound)
}

func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// Unavailable 将底层存储错误包装为 ErrStoreUnavailable，保留原始错误链
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStoreUnavailable, err))
}
