package api

import (
	"github.com/burrowblog/burrow/signup"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	blogHandler      blogHandler
	discoverHandler  discoverHandler
	upvoteHandler    upvoteHandler
	subscribeHandler subscribeHandler
	accountHandler   accountHandler
	dashboardHandler dashboardHandler

	sessions *signup.SessionManager
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error" example:"not found"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"email"`
	Details string `json:"details,omitempty" example:"Additional error details"`
}
