package waitlist

import (
	"context"
	"testing"

	"github.com/meetcasa/casa-waitlist-api/internal/log"
	"github.com/meetcasa/casa-waitlist-api/internal/models"
	apperrors "github.com/meetcasa/casa-waitlist-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestWaitlistService_JoinWaitlist(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := NewMockWaitlistRepository(ctrl)
	logger := log.NewLoggerWithJSONOutput()
	service := NewWaitlistService(logger, mockRepo)

	t.Run("normalizes email before persisting", func(t *testing.T) {
		req := &JoinWaitlistRequest{
			Contact:    "  John.Doe@Example.COM ",
			Type:       "email",
			SourcePage: "/landing",
		}

		mockRepo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
				assert.NotNil(t, entry.Email)
				assert.Equal(t, "john.doe@example.com", *entry.Email)
				assert.Nil(t, entry.Phone)
				assert.NotNil(t, entry.SourcePage)
				assert.Equal(t, "/landing", *entry.SourcePage)
				return entry, nil
			})

		result, err := service.JoinWaitlist(context.Background(), req, RequestMetadata{})

		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, "john.doe@example.com", result.Email)
		assert.Empty(t, result.Phone)
	})

	t.Run("strips phone to digits and records provenance", func(t *testing.T) {
		req := &JoinWaitlistRequest{
			Contact: "+1 (555) 010-9999",
			Type:    "phone",
		}
		meta := RequestMetadata{
			UserAgent: "Mozilla/5.0",
			IP:        "203.0.113.9",
		}

		mockRepo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
				assert.Nil(t, entry.Email)
				assert.NotNil(t, entry.Phone)
				assert.Equal(t, "15550109999", *entry.Phone)
				assert.NotNil(t, entry.UserAgent)
				assert.Equal(t, "Mozilla/5.0", *entry.UserAgent)
				assert.NotNil(t, entry.IP)
				assert.Equal(t, "203.0.113.9", *entry.IP)
				return entry, nil
			})

		result, err := service.JoinWaitlist(context.Background(), req, meta)

		assert.NoError(t, err)
		assert.Equal(t, "15550109999", result.Phone)
	})

	t.Run("rejects phone without digits, no store call", func(t *testing.T) {
		req := &JoinWaitlistRequest{Contact: "abc-def", Type: "phone"}

		result, err := service.JoinWaitlist(context.Background(), req, RequestMetadata{})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, apperrors.StatusBadRequest, apperrors.HTTPStatusCode(err))
	})

	t.Run("rejects unrecognized type, no store call", func(t *testing.T) {
		req := &JoinWaitlistRequest{Contact: "user@example.com", Type: "fax"}

		result, err := service.JoinWaitlist(context.Background(), req, RequestMetadata{})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, apperrors.StatusBadRequest, apperrors.HTTPStatusCode(err))
	})

	t.Run("nil request", func(t *testing.T) {
		result, err := service.JoinWaitlist(context.Background(), nil, RequestMetadata{})

		assert.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("duplicate contact surfaces as conflict", func(t *testing.T) {
		req := &JoinWaitlistRequest{Contact: "dup@example.com", Type: "email"}

		mockRepo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			Return(nil, apperrors.NewConflictError("This contact is already on the waitlist", nil))

		result, err := service.JoinWaitlist(context.Background(), req, RequestMetadata{})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, apperrors.StatusConflict, apperrors.HTTPStatusCode(err))
		assert.Equal(t, "This contact is already on the waitlist", apperrors.GetHumanReadableMessage(err))
	})

	t.Run("store failure is not a conflict", func(t *testing.T) {
		req := &JoinWaitlistRequest{Contact: "user@example.com", Type: "email"}

		mockRepo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			Return(nil, apperrors.NewDatabaseError("unable to create waitlist entry", nil))

		result, err := service.JoinWaitlist(context.Background(), req, RequestMetadata{})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, apperrors.StatusInternalServerError, apperrors.HTTPStatusCode(err))
	})
}
