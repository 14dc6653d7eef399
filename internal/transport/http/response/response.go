package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeUsernameExists     = 40001
	CodeEmailExists        = 40002
	CodeEmptySelection     = 40003
	CodeUnsupportedFormat  = 40004
	CodeEmptyDocument      = 40005
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeSourceNotFound     = 40401
	CodePaperNotFound      = 40402
	CodePaperExists        = 40901
	CodePayloadTooLarge    = 41300
	CodeAnswerBlocked      = 42200
	CodeInternalServer     = 50000
	CodeIngestFailed       = 50001
	CodeGenerationFailed   = 50200
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
