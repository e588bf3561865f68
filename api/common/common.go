package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应信封，status 为 success 或 error
type Response struct {
	Status string      `json:"status"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data,omitempty"`
}

func respond(c *gin.Context, httpStatus int, status, msg string, data interface{}) {
	c.JSON(httpStatus, Response{
		Status: status,
		Msg:    msg,
		Data:   data,
	})
}

// RespondSuccess 返回带数据的成功响应
func RespondSuccess(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, "success", "", data)
}

// RespondSuccessMessage 返回带提示语与数据的成功响应
func RespondSuccessMessage(c *gin.Context, msg string, data interface{}) {
	respond(c, http.StatusOK, "success", msg, data)
}

// RespondError 返回错误响应，msg 面向客户端
func RespondError(c *gin.Context, httpStatus int, msg string) {
	respond(c, httpStatus, "error", msg, nil)
}
