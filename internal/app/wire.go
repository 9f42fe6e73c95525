// Package app собирает сценарии и HTTP хэндлеры из репозиториев и сервисов.
package app

import (
	"time"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/http/router"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/handler"
	"github.com/ignatzorin/freelance-marketplace/internal/service"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/account"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/chat"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/listing"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/review"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/skill"
)

type Repositories struct {
	Users       repository.UserRepository
	Freelancers repository.FreelancerRepository
	Skills      repository.SkillRepository
	Reviews     repository.ReviewRepository
	Listings    repository.ListingRepository
	Interests   repository.InterestRepository
	Chats       repository.ChatRepository
	Messages    repository.MessageRepository
	Outbox      repository.OutboxWriter
	Tx          repository.Transactor
}

type Services struct {
	Hasher    *service.PasswordHasher
	Tokens    *service.TokenManager
	Blacklist account.TokenBlacklist
	Cache     account.Cache
	CacheTTL  time.Duration
	Media     account.MediaStore
	// Notifier может быть nil: тогда уведомления в реальном времени не отправляются.
	Notifier  chat.Notifier
}

// NewHandlers возвращает хэндлеры аккаунтов, заказов и чатов.
// Health и WS остаются за вызывающим кодом.
func NewHandlers(r Repositories, s Services) router.Handlers {
	resolveSkills := skill.NewResolveSkillNamesUseCase(r.Skills)

	accounts := handler.NewAccountHandler(handler.AccountUseCases{
		Register:        account.NewRegisterUseCase(r.Users, r.Outbox, r.Tx, s.Hasher),
		Login:           account.NewLoginUseCase(r.Users, s.Hasher, s.Tokens),
		Logout:          account.NewLogoutUseCase(s.Tokens, s.Blacklist),
		Refresh:         account.NewRefreshUseCase(r.Users, s.Tokens, s.Blacklist),
		GetProfile:      account.NewGetProfileUseCase(r.Users),
		UpdateProfile:   account.NewUpdateProfileUseCase(r.Users, resolveSkills, s.Media, s.Cache, r.Tx),
		ListFreelancers: account.NewListFreelancersUseCase(r.Freelancers),
		GetFreelancer:   account.NewGetFreelancerUseCase(r.Freelancers, r.Reviews),
		TopFreelancers:  account.NewTopFreelancersUseCase(r.Freelancers, s.Cache, s.CacheTTL),
		Search:          account.NewSearchFreelancersUseCase(r.Freelancers),
		CreateReview:    review.NewCreateReviewUseCase(r.Users, r.Freelancers, r.Reviews, r.Tx, s.Cache),
		ListReviews:     review.NewListFreelancerReviewsUseCase(r.Freelancers, r.Reviews),
		ListSkills:      skill.NewListSkillsUseCase(r.Skills),
		SkillsByIDs:     skill.NewResolveSkillIDsUseCase(r.Skills),
	})

	listings := handler.NewListingHandler(handler.ListingUseCases{
		Create:           listing.NewCreateListingUseCase(r.Listings, r.Users, resolveSkills, r.Outbox, r.Tx),
		Update:           listing.NewUpdateListingUseCase(r.Listings, r.Freelancers, resolveSkills, r.Tx),
		Take:             listing.NewTakeListingUseCase(r.Listings, r.Interests, r.Users, r.Chats, r.Messages, r.Tx, s.Notifier),
		Select:           listing.NewSelectFreelancerUseCase(r.Listings, r.Interests, r.Tx),
		Close:            listing.NewCloseListingUseCase(r.Listings, r.Tx),
		Interests:        listing.NewListInterestedUseCase(r.Listings, r.Interests),
		ListOpen:         listing.NewListOpenUseCase(r.Listings),
		MatchListings:    listing.NewMatchForFreelancerUseCase(r.Listings, r.Users),
		MatchFreelancers: listing.NewMatchFreelancersForClientUseCase(r.Listings, r.Freelancers, r.Users),
		Search:           listing.NewSearchListingsUseCase(r.Listings),
		ForUser:          listing.NewListForUserUseCase(r.Listings, r.Users),
		Get:              listing.NewGetListingUseCase(r.Listings),
	})

	chats := handler.NewChatHandler(handler.ChatUseCases{
		Start:    chat.NewStartChatUseCase(r.Users, r.Chats),
		List:     chat.NewListChatsUseCase(r.Chats),
		Get:      chat.NewGetChatUseCase(r.Chats, r.Messages),
		Send:     chat.NewSendMessageUseCase(r.Chats, r.Messages, s.Notifier),
		MarkRead: chat.NewMarkReadUseCase(r.Chats, r.Messages),
		Delete:   chat.NewDeleteChatUseCase(r.Chats),
	})

	return router.Handlers{
		Accounts: accounts,
		Listings: listings,
		Chats:    chats,
	}
}
