package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports service liveness plus database reachability. Load
// balancers treat anything but 200 as unhealthy.
func Health(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil {
			if err := db.PingContext(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{
					"status":   "degraded",
					"database": "unreachable",
				})
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}
