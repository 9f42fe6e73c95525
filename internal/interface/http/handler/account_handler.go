package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/account"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/review"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/skill"
)

// AccountUseCases сценарии аккаунтов, фрилансеров, отзывов и навыков.
type AccountUseCases struct {
	Register        *account.RegisterUseCase
	Login           *account.LoginUseCase
	Logout          *account.LogoutUseCase
	Refresh         *account.RefreshUseCase
	GetProfile      *account.GetProfileUseCase
	UpdateProfile   *account.UpdateProfileUseCase
	ListFreelancers *account.ListFreelancersUseCase
	GetFreelancer   *account.GetFreelancerUseCase
	TopFreelancers  *account.TopFreelancersUseCase
	Search          *account.SearchFreelancersUseCase
	CreateReview    *review.CreateReviewUseCase
	ListReviews     *review.ListFreelancerReviewsUseCase
	ListSkills      *skill.ListSkillsUseCase
	SkillsByIDs     *skill.ResolveSkillIDsUseCase
}

type AccountHandler struct {
	uc AccountUseCases
}

func NewAccountHandler(uc AccountUseCases) *AccountHandler {
	return &AccountHandler{uc: uc}
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.uc.Register.Execute(c.Request.Context(), account.RegisterInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToRegisterResponse(user))
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bind(c, &req) {
		return
	}

	res, err := h.uc.Login.Execute(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToLoginResponse(res))
}

func (h *AccountHandler) Logout(c *gin.Context) {
	var req dto.RefreshRequest
	if !bind(c, &req) {
		return
	}

	if err := h.uc.Logout.Execute(c.Request.Context(), req.Refresh); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "выход выполнен"})
}

func (h *AccountHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bind(c, &req) {
		return
	}

	pair, err := h.uc.Refresh.Execute(c.Request.Context(), req.Refresh)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTokenPairResponse(pair))
}

func (h *AccountHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	acc, err := h.uc.GetProfile.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp, err := dto.ToAccountResponse(acc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// UpdateProfile обслуживает PUT и PATCH. Оба метода частичные: меняются
// только переданные поля. Файлы принимаются в multipart/form-data.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !bind(c, &req) {
		return
	}
	input := req.ToInput(userID)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		image, err := openFormFile(c, "profile_image")
		if err != nil {
			response.Invalid(c, "не удалось прочитать profile_image")
			return
		}
		if image != nil {
			defer image.Close()
			input.Image = image
		}

		video, err := openFormFile(c, "profile_video")
		if err != nil {
			response.Invalid(c, "не удалось прочитать profile_video")
			return
		}
		if video != nil {
			defer video.Close()
			input.Video = video
		}
	}

	acc, err := h.uc.UpdateProfile.Execute(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp, err := dto.ToAccountResponse(acc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// openFormFile возвращает nil без ошибки, если файл не передан.
func openFormFile(c *gin.Context, field string) (io.ReadCloser, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return header.Open()
}

func (h *AccountHandler) ListFreelancers(c *gin.Context) {
	limit, offset := account.Page(parseIntQuery(c, "limit", 0), parseIntQuery(c, "offset", 0))

	cards, total, err := h.uc.ListFreelancers.Execute(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToFreelancerResponses(cards), total, limit, offset)
}

func (h *AccountHandler) GetFreelancer(c *gin.Context) {
	detail, err := h.uc.GetFreelancer.Execute(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToFreelancerDetailResponse(detail))
}

func (h *AccountHandler) ListReviews(c *gin.Context) {
	reviews, err := h.uc.ListReviews.Execute(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToReviewResponses(reviews))
}

func (h *AccountHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if !bind(c, &req) {
		return
	}

	r, err := h.uc.CreateReview.Execute(c.Request.Context(), review.CreateReviewInput{
		ClientID:           userID,
		FreelancerUsername: c.Param("username"),
		Rating:             req.Rating,
		Text:               req.Text,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToReviewResponse(r))
}

func (h *AccountHandler) TopFreelancers(c *gin.Context) {
	cards, err := h.uc.TopFreelancers.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToFreelancerResponses(cards))
}

func (h *AccountHandler) SearchFreelancers(c *gin.Context) {
	cards, err := h.uc.Search.Execute(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToFreelancerResponses(cards))
}

// ListSkills отдаёт весь каталог или, при ?ids=a,b, только существующие
// навыки из списка. Неизвестные id пропускаются.
func (h *AccountHandler) ListSkills(c *gin.Context) {
	if raw := c.Query("ids"); raw != "" {
		ids, err := parseUUIDList(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		skills, err := h.uc.SkillsByIDs.Execute(c.Request.Context(), ids)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, dto.ToSkillResponses(skills))
		return
	}

	skills, err := h.uc.ListSkills.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToSkillResponses(skills))
}
