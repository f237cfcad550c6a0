package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"aishare/middleware"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func currentUsername(ctx *gin.Context) string {
	return ctx.GetString(middleware.ContextUsernameKey)
}

func isAdmin(ctx *gin.Context) bool {
	return ctx.GetString(middleware.ContextRoleKey) == "admin"
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// splitTags turns a comma-separated tag field into trimmed, de-duplicated
// names. Empty tokens vanish.
func splitTags(raw string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
