package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/therapy-students-api/internal/middleware"
	"github.com/noah-isme/therapy-students-api/internal/models"
	appErrors "github.com/noah-isme/therapy-students-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

// therapistFromContext returns the caller's therapist id. The token subject of
// a therapist is its therapists.id.
func therapistFromContext(c *gin.Context) (int64, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return 0, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleTherapist {
		return 0, appErrors.Clone(appErrors.ErrForbidden, "only therapists have a caseload")
	}
	id, err := claims.UserID()
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token subject")
	}
	return id, nil
}
