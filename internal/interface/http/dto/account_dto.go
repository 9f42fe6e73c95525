package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/service"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/account"
)

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role" binding:"required,role"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest тело logout и refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// UpdateProfileRequest принимает и JSON, и multipart/form-data. Файлы
// profile_image и profile_video читаются из формы отдельно.
type UpdateProfileRequest struct {
	FirstName              *string   `json:"first_name" form:"first_name"`
	LastName               *string   `json:"last_name" form:"last_name"`
	Email                  *string   `json:"email" form:"email"`
	CompanyName            *string   `json:"company_name" form:"company_name"`
	CompanyWebsite         *string   `json:"company_website" form:"company_website"`
	PreferredCommunication *string   `json:"preferred_communication" form:"preferred_communication"`
	Portfolio              *string   `json:"portfolio" form:"portfolio"`
	SkillNames             *[]string `json:"skill_names" form:"skill_names" binding:"omitempty,dive,skillname"`
}

func (r UpdateProfileRequest) ToInput(userID uuid.UUID) account.UpdateProfileInput {
	return account.UpdateProfileInput{
		UserID: userID,
		User: entity.UserPatch{
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
		},
		Client: entity.ClientProfilePatch{
			CompanyName:            r.CompanyName,
			CompanyWebsite:         r.CompanyWebsite,
			PreferredCommunication: r.PreferredCommunication,
		},
		Portfolio:  r.Portfolio,
		SkillNames: r.SkillNames,
	}
}

type CreateReviewRequest struct {
	Rating float64 `json:"rating" binding:"required"`
	Text   string  `json:"text"`
}

type RegisterResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
}

func ToRegisterResponse(u *entity.User) RegisterResponse {
	return RegisterResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: string(u.Role)}
}

type LoginResponse struct {
	Access  string    `json:"access"`
	Refresh string    `json:"refresh"`
	Role    string    `json:"role"`
	UserID  uuid.UUID `json:"user_id"`
}

func ToLoginResponse(res *account.LoginResult) LoginResponse {
	return LoginResponse{
		Access:  res.Tokens.AccessToken,
		Refresh: res.Tokens.RefreshToken,
		Role:    string(res.User.Role),
		UserID:  res.User.ID,
	}
}

type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func ToTokenPairResponse(p *service.TokenPair) TokenPairResponse {
	return TokenPairResponse{Access: p.AccessToken, Refresh: p.RefreshToken}
}

type ClientProfileResponse struct {
	CompanyName            string  `json:"company_name"`
	CompanyWebsite         string  `json:"company_website"`
	ContactName            string  `json:"contact_name"`
	ContactEmail           string  `json:"contact_email"`
	PreferredCommunication string  `json:"preferred_communication"`
	ProfileImage           *string `json:"profile_image,omitempty"`
	ProfileVideo           *string `json:"profile_video,omitempty"`
}

type FreelancerProfileResponse struct {
	Portfolio     string   `json:"portfolio"`
	Skills        []string `json:"skills"`
	AverageRating float64  `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
	ProfileImage  *string  `json:"profile_image,omitempty"`
	ProfileVideo  *string  `json:"profile_video,omitempty"`
}

func toFreelancerProfileResponse(p *entity.FreelancerProfile) *FreelancerProfileResponse {
	if p == nil {
		return nil
	}
	return &FreelancerProfileResponse{
		Portfolio:     p.Portfolio,
		Skills:        skillNames(p.Skills),
		AverageRating: p.AverageRating,
		ReviewCount:   p.ReviewCount,
		ProfileImage:  mediaURL(p.ImagePath),
		ProfileVideo:  mediaURL(p.VideoPath),
	}
}

// AccountResponse собственный профиль: базовые поля и профиль текущей роли.
type AccountResponse struct {
	ID                uuid.UUID                  `json:"id"`
	Username          string                     `json:"username"`
	FirstName         string                     `json:"first_name"`
	LastName          string                     `json:"last_name"`
	Email             string                     `json:"email"`
	Role              string                     `json:"role"`
	ClientProfile     *ClientProfileResponse     `json:"client_profile,omitempty"`
	FreelancerProfile *FreelancerProfileResponse `json:"freelancer_profile,omitempty"`
}

func ToAccountResponse(acc *entity.Account) (AccountResponse, error) {
	u := acc.User
	resp := AccountResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
	}
	err := u.Role.Switch(
		func() error {
			if p := acc.Client; p != nil {
				resp.ClientProfile = &ClientProfileResponse{
					CompanyName:            p.CompanyName,
					CompanyWebsite:         p.CompanyWebsite,
					ContactName:            p.ContactName,
					ContactEmail:           p.ContactEmail,
					PreferredCommunication: string(p.PreferredCommunication),
					ProfileImage:           mediaURL(p.ImagePath),
					ProfileVideo:           mediaURL(p.VideoPath),
				}
			}
			return nil
		},
		func() error {
			resp.FreelancerProfile = toFreelancerProfileResponse(acc.Freelancer)
			return nil
		},
	)
	return resp, err
}

type FreelancerResponse struct {
	ID                uuid.UUID                  `json:"id"`
	Username          string                     `json:"username"`
	FirstName         string                     `json:"first_name"`
	LastName          string                     `json:"last_name"`
	Email             string                     `json:"email"`
	FreelancerProfile *FreelancerProfileResponse `json:"freelancer_profile"`
}

func ToFreelancerResponse(card *entity.FreelancerCard) FreelancerResponse {
	return FreelancerResponse{
		ID:                card.User.ID,
		Username:          card.User.Username,
		FirstName:         card.User.FirstName,
		LastName:          card.User.LastName,
		Email:             card.User.Email,
		FreelancerProfile: toFreelancerProfileResponse(card.Profile),
	}
}

func ToFreelancerResponses(cards []*entity.FreelancerCard) []FreelancerResponse {
	out := make([]FreelancerResponse, len(cards))
	for i, card := range cards {
		out[i] = ToFreelancerResponse(card)
	}
	return out
}

type ReviewResponse struct {
	Rating    float64   `json:"rating"`
	Text      string    `json:"text"`
	Client    string    `json:"client"`
	CreatedAt time.Time `json:"created_at"`
}

func ToReviewResponse(r *entity.Review) ReviewResponse {
	return ReviewResponse{Rating: r.Rating, Text: r.Text, Client: r.ClientUsername, CreatedAt: r.CreatedAt}
}

func ToReviewResponses(reviews []*entity.Review) []ReviewResponse {
	out := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = ToReviewResponse(r)
	}
	return out
}

type FreelancerDetailResponse struct {
	FreelancerResponse
	Reviews []ReviewResponse `json:"reviews"`
}

func ToFreelancerDetailResponse(d *account.FreelancerDetail) FreelancerDetailResponse {
	return FreelancerDetailResponse{
		FreelancerResponse: ToFreelancerResponse(d.Card),
		Reviews:            ToReviewResponses(d.Reviews),
	}
}
