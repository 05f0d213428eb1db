package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// DB returns the transaction when one is open, otherwise fallback, scoped to Ctx.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	tx := c.Tx
	if tx == nil {
		tx = fallback
	}
	if c.Ctx != nil {
		tx = tx.WithContext(c.Ctx)
	}
	return tx
}

func (c Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}
