package actorctx

import "context"

type ctxKey string

const keyEmployeeID ctxKey = "employee_id"

func WithEmployeeID(ctx context.Context, employeeID string) context.Context {
	return context.WithValue(ctx, keyEmployeeID, employeeID)
}

func EmployeeIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyEmployeeID).(string)

	return v, ok && v != ""
}
