package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lxzan/gws"
	"github.com/stretchr/testify/assert"
)

func TestIsNormalClosure(t *testing.T) {

	// 客户端关闭帧携带的关闭码
	assert.True(t, IsNormalClosure(&gws.CloseError{Code: 1000}))
	assert.True(t, IsNormalClosure(&gws.CloseError{Code: 1001}))
	assert.False(t, IsNormalClosure(&gws.CloseError{Code: 1006}))

	// 服务端 WriteClose(1000) 存储的是状态码错误
	assert.True(t, IsNormalClosure(errors.New("close normal")))

	// 网络错误与超时按意外断开处理
	assert.False(t, IsNormalClosure(nil))
	assert.False(t, IsNormalClosure(fmt.Errorf("read tcp: connection reset by peer")))
}
