package commerceserver

import (
	"github.com/gin-gonic/gin"

	apierrors "github.com/edumartvn/commerce-api/internal/shared/errors"
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// respondServiceError renders any application error as an RFC 7807 response.
// Taxonomy errors map through their kind, everything else is an internal
// error with the detail suppressed.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	apierrors.RespondError(c, err)
}

// respondBindingError renders a payload binding failure.
func respondBindingError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

// respondNotFound renders a 404 for a named resource.
func respondNotFound(c *gin.Context, resourceType string, identifier any) {
	respondProblem(c, apierrors.NewNotFoundProblem(resourceType, identifier))
}
