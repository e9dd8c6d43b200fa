package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mizanur-rahman/homemeal/internal/server/http/middleware"
)

// CurrentIdentity extracts the authenticated caller from context.
func CurrentIdentity(c *gin.Context) middleware.Identity {
	val, ok := c.Get(middleware.IdentityContextKey)
	if !ok {
		return middleware.Identity{}
	}
	identity, _ := val.(middleware.Identity)
	return identity
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
