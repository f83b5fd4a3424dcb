package middleware

import "github.com/labstack/echo/v4"

// currentUserID returns the session subject stored by AdminSession, or
// "anon" for public requests.
func currentUserID(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return "anon"
}
