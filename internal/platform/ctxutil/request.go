package ctxutil

import "context"

type requestDataKey struct{}

// RequestData is the authenticated caller attached by the auth middleware.
type RequestData struct {
	TokenString string
	UserID      int64
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// UserID returns the caller id, or 0 when the request is anonymous.
func UserID(ctx context.Context) int64 {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.UserID
	}
	return 0
}
