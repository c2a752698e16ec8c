package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/estia/marketplace-service/internal/middleware"
	"github.com/estia/marketplace-service/internal/utils"
)

// formatValidationErrors converts validator errors into the field-keyed map
// the API returns for every validation failure.
func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "min":
			message = fmt.Sprintf("Field '%s' must be at least %s in length", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("Field '%s' must not exceed %s in length", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("Field '%s' must be one of [%s]", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag())
		}
		fields[err.Field()] = message
	}
	return fields
}

// respondValidationError writes the standard 422 payload for a failed
// validate.Struct call.
func respondValidationError(w http.ResponseWriter, err error) {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		utils.RespondErrorWithCode(w, http.StatusUnprocessableEntity, utils.ErrCodeValidation, "Validation failed", formatValidationErrors(validationErrs))
		return
	}
	utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
}

// userIDFromContext reads the authenticated user's ID placed by the auth
// middleware.
func userIDFromContext(r *http.Request) (uuid.UUID, error) {
	ctxUserID := r.Context().Value(middleware.ContextKeyUserID)
	if ctxUserID == nil {
		return uuid.Nil, &utils.AppError{StatusCode: http.StatusUnauthorized, Code: utils.ErrCodeUnauthorized, Message: "Missing userID in context"}
	}
	userID, err := uuid.Parse(ctxUserID.(string))
	if err != nil {
		return uuid.Nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeInvalidPayload, Message: "Invalid userID format", Err: err}
	}
	return userID, nil
}

func isAdminFromContext(r *http.Request) bool {
	role, _ := r.Context().Value(middleware.ContextKeyUserRole).(string)
	return role == "admin"
}

// pathUUID parses one UUID path variable.
func pathUUID(vars map[string]string, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(vars[name])
	if err != nil {
		return uuid.Nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeInvalidPayload, Message: fmt.Sprintf("Invalid %s format", name), Err: err}
	}
	return id, nil
}
