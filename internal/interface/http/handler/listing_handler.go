package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/account"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/listing"
)

type ListingUseCases struct {
	Create           *listing.CreateListingUseCase
	Update           *listing.UpdateListingUseCase
	Take             *listing.TakeListingUseCase
	Select           *listing.SelectFreelancerUseCase
	Close            *listing.CloseListingUseCase
	Interests        *listing.ListInterestedUseCase
	ListOpen         *listing.ListOpenUseCase
	MatchListings    *listing.MatchForFreelancerUseCase
	MatchFreelancers *listing.MatchFreelancersForClientUseCase
	Search           *listing.SearchListingsUseCase
	ForUser          *listing.ListForUserUseCase
	Get              *listing.GetListingUseCase
}

type ListingHandler struct {
	uc ListingUseCases
}

func NewListingHandler(uc ListingUseCases) *ListingHandler {
	return &ListingHandler{uc: uc}
}

func (h *ListingHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateListingRequest
	if !bind(c, &req) {
		return
	}
	input, err := req.ToInput(userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	l, err := h.uc.Create.Execute(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToListingResponse(l))
}

func (h *ListingHandler) Get(c *gin.Context) {
	l, err := h.uc.Get.Execute(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToListingResponse(l))
}

func (h *ListingHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateListingRequest
	if !bind(c, &req) {
		return
	}
	input, err := req.ToInput(userID, c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	l, err := h.uc.Update.Execute(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToListingResponse(l))
}

// Take отмечает интерес фрилансера и возвращает чат с заказчиком.
func (h *ListingHandler) Take(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	chat, err := h.uc.Take.Execute(c.Request.Context(), userID, c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"chat_id": chat.ID})
}

func (h *ListingHandler) Interests(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	interests, err := h.uc.Interests.Execute(c.Request.Context(), userID, c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToInterestResponses(interests))
}

func (h *ListingHandler) Select(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SelectFreelancerRequest
	if !bind(c, &req) {
		return
	}
	freelancerID, err := req.ID()
	if err != nil {
		response.Error(c, err)
		return
	}

	l, err := h.uc.Select.Execute(c.Request.Context(), userID, c.Param("slug"), freelancerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToListingResponse(l))
}

func (h *ListingHandler) Close(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	l, err := h.uc.Close.Execute(c.Request.Context(), userID, c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToListingResponse(l))
}

// ListOpen принимает min_price, max_price и skills. Навыки можно передать
// списком через запятую или повторяющимся параметром.
func (h *ListingHandler) ListOpen(c *gin.Context) {
	filter := listing.OpenListingsFilter{
		Skills: skillsQuery(c),
	}
	filter.Limit, filter.Offset = account.Page(parseIntQuery(c, "limit", 0), parseIntQuery(c, "offset", 0))

	var err error
	if filter.MinPrice, err = priceQuery(c, "min_price"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.MaxPrice, err = priceQuery(c, "max_price"); err != nil {
		response.Error(c, err)
		return
	}

	listings, total, err := h.uc.ListOpen.Execute(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToOpenListingResponses(listings), total, filter.Limit, filter.Offset)
}

func (h *ListingHandler) MatchListings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	matches, err := h.uc.MatchListings.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToMatchedListingResponses(matches))
}

func (h *ListingHandler) MatchFreelancers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	cards, err := h.uc.MatchFreelancers.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToFreelancerResponses(cards))
}

func (h *ListingHandler) Search(c *gin.Context) {
	listings, err := h.uc.Search.Execute(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToListingResponses(listings))
}

// Mine заказы текущего пользователя: созданные заказчиком или назначенные фрилансеру.
func (h *ListingHandler) Mine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	listings, err := h.uc.ForUser.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToListingResponses(listings))
}

func priceQuery(c *gin.Context, key string) (*valueobject.Price, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	p, err := valueobject.ParsePrice(raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func skillsQuery(c *gin.Context) []string {
	var out []string
	for _, v := range c.QueryArray("skills") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}
