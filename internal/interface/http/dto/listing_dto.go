package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/listing"
)

type CreateListingRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Price       Decimal  `json:"price" binding:"required"`
	SkillNames  []string `json:"skill_names" binding:"omitempty,dive,skillname"`
}

func (r CreateListingRequest) ToInput(clientID uuid.UUID) (listing.CreateListingInput, error) {
	price, err := r.Price.Price()
	if err != nil {
		return listing.CreateListingInput{}, err
	}
	return listing.CreateListingInput{
		ClientID:    clientID,
		Title:       r.Title,
		Description: r.Description,
		Price:       price,
		SkillNames:  r.SkillNames,
	}, nil
}

type UpdateListingRequest struct {
	Title              *string   `json:"title"`
	Description        *string   `json:"description"`
	Price              *Decimal  `json:"price"`
	SkillNames         *[]string `json:"skill_names" binding:"omitempty,dive,skillname"`
	FreelancerUsername *string   `json:"freelancer_username"`
}

func (r UpdateListingRequest) ToInput(editorID uuid.UUID, slug string) (listing.UpdateListingInput, error) {
	input := listing.UpdateListingInput{
		EditorID:           editorID,
		Slug:               slug,
		Patch:              entity.ListingPatch{Title: r.Title, Description: r.Description},
		SkillNames:         r.SkillNames,
		FreelancerUsername: r.FreelancerUsername,
	}
	if r.Price != nil {
		price, err := r.Price.Price()
		if err != nil {
			return input, err
		}
		input.Patch.Price = &price
	}
	return input, nil
}

type SelectFreelancerRequest struct {
	FreelancerID string `json:"freelancer_id" binding:"required,uuid"`
}

func (r SelectFreelancerRequest) ID() (uuid.UUID, error) {
	id, err := uuid.Parse(r.FreelancerID)
	if err != nil {
		return uuid.Nil, apperror.Validation("некорректный freelancer_id")
	}
	return id, nil
}

// ListingResponse заказ целиком. Email участников не раскрывается.
type ListingResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Price       string     `json:"price"`
	Status      string     `json:"status"`
	Client      string     `json:"client"`
	Freelancer  *string    `json:"freelancer"`
	Skills      []string   `json:"skills"`
	CreatedAt   time.Time  `json:"created_at"`
	TakenAt     *time.Time `json:"taken_at"`
	EndedAt     *time.Time `json:"ended_at"`
}

func ToListingResponse(l *entity.Listing) ListingResponse {
	resp := ListingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Slug:        l.Slug,
		Description: l.Description,
		Price:       l.Price.String(),
		Status:      string(l.Status),
		Client:      l.ClientUsername,
		Skills:      skillNames(l.Skills),
		CreatedAt:   l.CreatedAt,
		TakenAt:     optionalTime(l.TakenAt),
		EndedAt:     optionalTime(l.EndedAt),
	}
	if l.FreelancerID != nil {
		name := l.FreelancerUsername
		resp.Freelancer = &name
	}
	return resp
}

func ToListingResponses(listings []*entity.Listing) []ListingResponse {
	out := make([]ListingResponse, len(listings))
	for i, l := range listings {
		out[i] = ToListingResponse(l)
	}
	return out
}

// OpenListingResponse краткая карточка открытого заказа.
type OpenListingResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	Slug        string    `json:"slug"`
	Skills      []string  `json:"skills"`
}

func ToOpenListingResponse(l *entity.Listing) OpenListingResponse {
	return OpenListingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price.String(),
		CreatedAt:   l.CreatedAt,
		Slug:        l.Slug,
		Skills:      skillNames(l.Skills),
	}
}

func ToOpenListingResponses(listings []*entity.Listing) []OpenListingResponse {
	out := make([]OpenListingResponse, len(listings))
	for i, l := range listings {
		out[i] = ToOpenListingResponse(l)
	}
	return out
}

type MatchedListingResponse struct {
	OpenListingResponse
	MatchedSkillsCount int `json:"matched_skills_count"`
}

func ToMatchedListingResponses(matches []entity.ListingMatch) []MatchedListingResponse {
	out := make([]MatchedListingResponse, len(matches))
	for i, m := range matches {
		out[i] = MatchedListingResponse{
			OpenListingResponse: ToOpenListingResponse(m.Listing),
			MatchedSkillsCount:  m.MatchedCount,
		}
	}
	return out
}

type InterestResponse struct {
	FreelancerID uuid.UUID  `json:"freelancer_id"`
	Freelancer   string     `json:"freelancer"`
	ChatID       *uuid.UUID `json:"chat_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

func ToInterestResponses(interests []*entity.Interest) []InterestResponse {
	out := make([]InterestResponse, len(interests))
	for i, in := range interests {
		out[i] = InterestResponse{
			FreelancerID: in.FreelancerID,
			Freelancer:   in.FreelancerUsername,
			ChatID:       in.ChatID,
			CreatedAt:    in.CreatedAt,
		}
	}
	return out
}
