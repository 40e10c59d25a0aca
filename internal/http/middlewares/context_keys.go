package middlewares

const (
	CtxRequestID    = "request_id"
	CtxEmployeeID   = "session.employeeID"
	CtxEmployeeName = "session.name"
)
