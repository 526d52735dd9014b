package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 业务错误码
// code 为 0 表示成功；非 0 为业务错误，调用方需与传输层错误区分展示
const (
	CodeOK              = 0
	CodeInvalidParam    = 1001 // 参数/校验错误
	CodeConflict        = 1002 // 区间重叠、重复绑定等写冲突
	CodeNotFound        = 1003 // 模板/规则/绑定不存在
	CodeNoRateForRegion = 1004 // 该区域无运费规则
	CodeNoTemplateBound = 1005 // 产品未绑定运费模板
	CodeInternal        = 1500 // 存储等内部错误
)

// Response 统一响应信封
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success 成功响应
func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Code:    CodeOK,
		Message: message,
		Data:    data,
	})
}

// BizError 业务错误响应
// HTTP 状态保持 200，由 code 区分业务错误类别
func BizError(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// Error 传输层错误响应（参数解析失败、内部错误等）
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Code:    status,
		Message: message,
	})
}
