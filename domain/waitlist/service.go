package waitlist

import (
	"context"

	"github.com/meetcasa/casa-waitlist-api/internal/log"
	"github.com/meetcasa/casa-waitlist-api/pkg/contact"
	apperrors "github.com/meetcasa/casa-waitlist-api/pkg/errors"
)

type WaitlistService interface {
	// JoinWaitlist normalizes the submitted contact and records it together
	// with its provenance metadata. A contact that is already stored yields
	// a conflict error; the existing entry is never modified.
	JoinWaitlist(ctx context.Context, req *JoinWaitlistRequest, meta RequestMetadata) (*WaitlistEntryResponse, error)
}

type waitlistService struct {
	logger     *log.Logger
	repository WaitlistRepository
}

func NewWaitlistService(logger *log.Logger, repository WaitlistRepository) WaitlistService {
	return &waitlistService{logger: logger, repository: repository}
}

func (s *waitlistService) JoinWaitlist(ctx context.Context, req *JoinWaitlistRequest, meta RequestMetadata) (*WaitlistEntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("JoinWaitlist received empty request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	normalized, err := contact.Normalize(req.Contact, req.Type)
	if err != nil {
		logger.Error("Contact failed normalization", "type", req.Type, "error", err)
		return nil, apperrors.NewInvalidRequestError(err.Error(), err)
	}

	entryModel := ToWaitlistEntryModel(normalized, req.SourcePage, meta)

	entry, err := s.repository.CreateEntry(ctx, entryModel)
	if err != nil {
		logger.Error("Failed to create waitlist entry", "error", err)
		return nil, err
	}

	response := ToWaitlistEntryResponse(entry)
	return &response, nil
}
