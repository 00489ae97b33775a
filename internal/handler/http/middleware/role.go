package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-payroll/internal/handler/http/response"
)

const (
	RoleOwner    = "owner"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// RequireManager requires manager or owner role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, auth.ErrManagerRequired)
			return
		}

		role, ok := claims["role"].(string)
		if !ok {
			response.HandleError(w, auth.ErrManagerRequired)
			return
		}

		if role != RoleManager && role != RoleOwner {
			response.HandleError(w, auth.ErrManagerRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
