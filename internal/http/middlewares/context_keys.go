package middlewares

type ctxKey string

const (
	CtxIdentity  ctxKey = "identity"
	CtxRequestID ctxKey = "requestID"
)
