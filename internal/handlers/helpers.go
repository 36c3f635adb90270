package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondOK wraps a payload in the success envelope.
func respondOK(w http.ResponseWriter, status int, payload map[string]interface{}) {
	payload["success"] = true
	respondJSON(w, status, payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, e.Field()+" is required")
			case "uuid":
				messages = append(messages, e.Field()+" must be a valid UUID")
			case "gt":
				messages = append(messages, e.Field()+" must be greater than "+e.Param())
			case "oneof":
				messages = append(messages, e.Field()+" must be one of: "+e.Param())
			default:
				messages = append(messages, e.Field()+" is invalid")
			}
		}
		return strings.Join(messages, ", ")
	}
	return "validation failed"
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
