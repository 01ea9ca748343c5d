package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shilloon/Virtual-Statistics-site/model"
)

// intQuery parses an integer query parameter. An absent parameter yields
// def; a present but non-numeric or out-of-range value writes a 400
// response and returns ok=false. One policy for every numeric parameter.
func intQuery(c *gin.Context, name string, def, min, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": name + " must be an integer between " +
				strconv.Itoa(min) + " and " + strconv.Itoa(max),
		})
		return 0, false
	}
	return v, true
}

// tierQuery reads the tier query parameter. ""/"ALL" pass through
// unchanged (no filter); any other value must be a known tier code or the
// helper writes a 400 response and returns ok=false.
func tierQuery(c *gin.Context) (string, bool) {
	tier := c.Query("tier")
	if tier == "" || tier == "ALL" {
		return tier, true
	}
	if !model.ValidTier(tier) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tier " + tier})
		return "", false
	}
	return tier, true
}
