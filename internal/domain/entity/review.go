package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/validation"
)

type Review struct {
	ID             uuid.UUID
	ClientID       uuid.UUID
	FreelancerID   uuid.UUID
	Rating         float64
	Text           string
	ClientUsername string
	CreatedAt      time.Time
}

func NewReview(clientID, freelancerID uuid.UUID, rating float64, text string) (*Review, error) {
	if clientID == freelancerID {
		return nil, apperror.Validation("нельзя оставить отзыв самому себе")
	}
	if err := validation.ValidateRating(rating); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateReviewText(text); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	return &Review{
		ID:           uuid.New(),
		ClientID:     clientID,
		FreelancerID: freelancerID,
		Rating:       rating,
		Text:         strings.TrimSpace(text),
		CreatedAt:    time.Now(),
	}, nil
}

// AverageRating среднее арифметическое оценок, 0 для пустого набора.
func AverageRating(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}
