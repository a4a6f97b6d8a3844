// Package types 定义 HTTP 请求与响应结构.
package types

// Response 统一响应信封，成功时携带 data，失败时携带 message.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK 成功响应.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// OKMessage 成功且只有提示信息.
func OKMessage(msg string) Response {
	return Response{Success: true, Message: msg}
}

// Fail 失败响应.
func Fail(msg string) Response {
	return Response{Success: false, Message: msg}
}

// ActionResponse 批量动作结果.
type ActionResponse struct {
	Affected int64 `json:"affected"`
}
