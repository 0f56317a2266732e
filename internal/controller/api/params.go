package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID reads a positive integer path parameter, answering 404 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusNotFound, "not_found", "resource not found")
		return 0, false
	}
	return id, true
}

// activeOnly reads ?active=true.
func activeOnly(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.DefaultQuery("active", "false"))
	return err == nil && v
}
