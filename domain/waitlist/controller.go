package waitlist

import (
	"net"
	"strings"

	"github.com/meetcasa/casa-waitlist-api/config/router"
	"github.com/meetcasa/casa-waitlist-api/internal/log"
	apperrors "github.com/meetcasa/casa-waitlist-api/pkg/errors"
	"github.com/meetcasa/casa-waitlist-api/pkg/ratelimit"
	"gorm.io/gorm"
)

func NewWaitlistController(
	db *gorm.DB,
	logger *log.Logger,
) *router.RESTController {

	return router.NewRESTController(
		"WaitlistController",
		"/api/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			repository := NewWaitlistRepository(db)
			service := NewWaitlistService(logger, repository)

			submissionLimiter := createSubmissionRateLimiter(rs)

			rs.AddPostHandler(c, submissionLimiter, "", joinWaitlistHandler(service))
		},
	)
}

// The write path gets its own limiter instance so health probes and other
// routes do not consume a client's submission budget.
func createSubmissionRateLimiter(routerService *router.RouterService) ratelimit.RateLimiter {
	requests, window := routerService.GetDefaultRateLimitConfig()

	config := &ratelimit.RateLimitConfig{
		Requests: requests,
		Window:   window,
		Redis:    nil, // In-memory; counters reset on restart, which is acceptable here
		Logger:   nil,
	}

	return ratelimit.NewRateLimiter(config)
}

func joinWaitlistHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req JoinWaitlistRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("email or phone required", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		meta := RequestMetadata{
			UserAgent: ctx.Request.UserAgent(),
			IP:        clientAddress(ctx),
		}

		response, err := service.JoinWaitlist(ctx.Request.Context(), &req, meta)
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return router.CreatedResult(response, "Waitlist entry")
	}
}

// clientAddress records provenance only: the first entry of a forwarded-for
// chain when present, else the direct peer. Rate limiting uses gin's
// trusted-proxy-aware ClientIP instead.
func clientAddress(ctx *router.RequestContext) string {
	if xff := ctx.GetHeader("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(ctx.Request.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return ctx.Request.RemoteAddr
}
