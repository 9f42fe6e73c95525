package listing

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/account"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/skill"
)

const (
	MatchedListingsLimit = 10
	searchLimit          = 50
)

type OpenListingsFilter struct {
	MinPrice *valueobject.Price
	MaxPrice *valueobject.Price
	Skills   []string
	Limit    int
	Offset   int
}

type ListOpenUseCase struct {
	listingRepo repository.ListingRepository
}

func NewListOpenUseCase(listingRepo repository.ListingRepository) *ListOpenUseCase {
	return &ListOpenUseCase{listingRepo: listingRepo}
}

// Execute возвращает открытые заказы без исполнителя. Фильтры объединяются по И.
func (uc *ListOpenUseCase) Execute(ctx context.Context, f OpenListingsFilter) ([]*entity.Listing, int, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.Cents() > f.MaxPrice.Cents() {
		return nil, 0, apperror.Validation("min_price не может быть больше max_price")
	}

	var names []string
	if len(f.Skills) > 0 {
		var err error
		if names, err = skill.NormalizeNames(f.Skills); err != nil {
			return nil, 0, err
		}
	}

	limit, offset := account.Page(f.Limit, f.Offset)
	return uc.listingRepo.ListOpen(ctx, repository.ListingFilter{
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
		Skills:   names,
		Limit:    limit,
		Offset:   offset,
	})
}

type MatchForFreelancerUseCase struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
}

func NewMatchForFreelancerUseCase(listingRepo repository.ListingRepository, userRepo repository.UserRepository) *MatchForFreelancerUseCase {
	return &MatchForFreelancerUseCase{listingRepo: listingRepo, userRepo: userRepo}
}

// Execute ранжирует открытые заказы по числу навыков, совпавших с навыками
// фрилансера. При равенстве сохраняется порядок хранилища (новые выше).
func (uc *MatchForFreelancerUseCase) Execute(ctx context.Context, freelancerID uuid.UUID) ([]entity.ListingMatch, error) {
	acc, err := uc.userRepo.GetAccount(ctx, freelancerID)
	if err != nil {
		return nil, err
	}
	if !acc.User.Role.IsFreelancer() || acc.Freelancer == nil {
		return nil, apperror.ErrFreelancerOnly
	}

	open, _, err := uc.listingRepo.ListOpen(ctx, repository.ListingFilter{})
	if err != nil {
		return nil, err
	}
	return RankBySkills(open, acc.Freelancer.Skills, MatchedListingsLimit), nil
}

// RankBySkills считает пересечение навыков и оставляет limit лучших.
func RankBySkills(listings []*entity.Listing, have []entity.Skill, limit int) []entity.ListingMatch {
	set := entity.SkillSet(have)
	matches := make([]entity.ListingMatch, 0, len(listings))
	for _, l := range listings {
		matches = append(matches, entity.ListingMatch{Listing: l, MatchedCount: entity.CountOverlap(l.Skills, set)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchedCount > matches[j].MatchedCount
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

type MatchFreelancersForClientUseCase struct {
	listingRepo    repository.ListingRepository
	freelancerRepo repository.FreelancerRepository
	userRepo       repository.UserRepository
}

func NewMatchFreelancersForClientUseCase(
	listingRepo repository.ListingRepository,
	freelancerRepo repository.FreelancerRepository,
	userRepo repository.UserRepository,
) *MatchFreelancersForClientUseCase {
	return &MatchFreelancersForClientUseCase{listingRepo: listingRepo, freelancerRepo: freelancerRepo, userRepo: userRepo}
}

// Execute подбирает фрилансеров, у которых есть хоть один навык из заказов клиента.
func (uc *MatchFreelancersForClientUseCase) Execute(ctx context.Context, clientID uuid.UUID) ([]*entity.FreelancerCard, error) {
	if _, err := requireRole(ctx, uc.userRepo, clientID, valueobject.RoleClient, apperror.ErrClientOnly); err != nil {
		return nil, err
	}

	skillIDs, err := uc.listingRepo.SkillIDsOfClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(skillIDs) == 0 {
		return []*entity.FreelancerCard{}, nil
	}
	return uc.freelancerRepo.FindBySkills(ctx, skillIDs)
}

type SearchListingsUseCase struct {
	listingRepo repository.ListingRepository
}

func NewSearchListingsUseCase(listingRepo repository.ListingRepository) *SearchListingsUseCase {
	return &SearchListingsUseCase{listingRepo: listingRepo}
}

func (uc *SearchListingsUseCase) Execute(ctx context.Context, query string) ([]*entity.Listing, error) {
	query, err := account.NormalizeQuery(query)
	if err != nil {
		return nil, err
	}
	return uc.listingRepo.Search(ctx, query, searchLimit)
}

type ListForUserUseCase struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
}

func NewListForUserUseCase(listingRepo repository.ListingRepository, userRepo repository.UserRepository) *ListForUserUseCase {
	return &ListForUserUseCase{listingRepo: listingRepo, userRepo: userRepo}
}

// Execute фрилансеру отдаёт назначенные ему заказы, заказчику созданные им.
func (uc *ListForUserUseCase) Execute(ctx context.Context, userID uuid.UUID) ([]*entity.Listing, error) {
	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out []*entity.Listing
	err = user.Role.Switch(
		func() (err error) {
			out, err = uc.listingRepo.ListByClient(ctx, user.ID)
			return err
		},
		func() (err error) {
			out, err = uc.listingRepo.ListByFreelancer(ctx, user.ID)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type GetListingUseCase struct {
	listingRepo repository.ListingRepository
}

func NewGetListingUseCase(listingRepo repository.ListingRepository) *GetListingUseCase {
	return &GetListingUseCase{listingRepo: listingRepo}
}

func (uc *GetListingUseCase) Execute(ctx context.Context, slug string) (*entity.Listing, error) {
	return uc.listingRepo.FindBySlug(ctx, slug)
}
