// Package usecasetest содержит in-memory реализации репозиториев для тестов
// сценариев. Все репозитории одного Store видят общие данные.
package usecasetest

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

type OutboxRecord struct {
	Event   string
	Payload json.RawMessage
}

type Store struct {
	mu sync.Mutex

	users            map[uuid.UUID]*entity.User
	clients          map[uuid.UUID]*entity.ClientProfile
	freelancers      map[uuid.UUID]*entity.FreelancerProfile
	freelancerSkills map[uuid.UUID][]uuid.UUID
	skills           []entity.Skill
	reviews          []*entity.Review
	listings         []*entity.Listing
	listingSkills    map[uuid.UUID][]uuid.UUID
	interests        []*entity.Interest
	chats            []*entity.Chat
	messages         []*entity.Message
	outbox           []OutboxRecord
}

func NewStore() *Store {
	return &Store{
		users:            map[uuid.UUID]*entity.User{},
		clients:          map[uuid.UUID]*entity.ClientProfile{},
		freelancers:      map[uuid.UUID]*entity.FreelancerProfile{},
		freelancerSkills: map[uuid.UUID][]uuid.UUID{},
		listingSkills:    map[uuid.UUID][]uuid.UUID{},
	}
}

var txMu sync.Mutex

type txKey struct{}

// Tx выполняет транзакции строго по очереди, как если бы каждая блокировала
// все затронутые строки. Отката нет. Вложенный вызов присоединяется к внешнему.
type Tx struct{}

func (Tx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	txMu.Lock()
	defer txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

// MustAccount создаёт пользователя с профилем и паникует при ошибке.
func (s *Store) MustAccount(username string, role valueobject.Role) *entity.User {
	u, err := entity.NewUser(username, "Имя", "Фамилия", username+"@example.com", "hash", role)
	if err != nil {
		panic(err)
	}
	acc, err := entity.NewAccount(u)
	if err != nil {
		panic(err)
	}
	if err := s.Users().Create(context.Background(), acc); err != nil {
		panic(err)
	}
	return u
}

// MustSkills назначает фрилансеру навыки, создавая их в каталоге.
func (s *Store) MustSkills(userID uuid.UUID, names ...string) []entity.Skill {
	skills, err := s.Skills().GetOrCreate(context.Background(), names)
	if err != nil {
		panic(err)
	}
	if err := s.Users().ReplaceFreelancerSkills(context.Background(), userID, entity.SkillIDs(skills)); err != nil {
		panic(err)
	}
	return skills
}

func (s *Store) Outbox() []OutboxRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]OutboxRecord(nil), s.outbox...)
}

func (s *Store) skillsByIDs(ids []uuid.UUID) []entity.Skill {
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := []entity.Skill{}
	for _, sk := range s.skills {
		if _, ok := want[sk.ID]; ok {
			out = append(out, sk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) username(id uuid.UUID) string {
	if u, ok := s.users[id]; ok {
		return u.Username
	}
	return ""
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// ---- users ----

type UserRepo struct{ s *Store }

func (s *Store) Users() *UserRepo { return &UserRepo{s} }

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(_ context.Context, acc *entity.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == acc.User.Username {
			return apperror.ErrUsernameTaken
		}
		if u.Email == acc.User.Email {
			return apperror.ErrEmailTaken
		}
	}
	u := *acc.User
	r.s.users[u.ID] = &u
	if acc.Client != nil {
		p := *acc.Client
		r.s.clients[u.ID] = &p
	}
	if acc.Freelancer != nil {
		p := *acc.Freelancer
		r.s.freelancers[u.ID] = &p
	}
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

func (r *UserRepo) GetAccount(ctx context.Context, userID uuid.UUID) (*entity.Account, error) {
	u, err := r.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	acc := &entity.Account{User: u}
	if p, ok := r.s.clients[userID]; ok {
		cp := *p
		acc.Client = &cp
	}
	if p, ok := r.s.freelancers[userID]; ok {
		cp := *p
		cp.Skills = r.s.skillsByIDs(r.s.freelancerSkills[userID])
		acc.Freelancer = &cp
	}
	return acc, nil
}

func (r *UserRepo) UpdateUser(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if other.ID != u.ID && other.Email == u.Email {
			return apperror.ErrEmailTaken
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) UpdateClientProfile(_ context.Context, p *entity.ClientProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.clients[p.UserID] = &cp
	return nil
}

func (r *UserRepo) UpdateFreelancerProfile(_ context.Context, p *entity.FreelancerProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.freelancers[p.UserID]
	if !ok {
		return apperror.ErrFreelancerNotFound
	}
	cur.Portfolio, cur.ImagePath, cur.VideoPath, cur.UpdatedAt = p.Portfolio, p.ImagePath, p.VideoPath, p.UpdatedAt
	return nil
}

func (r *UserRepo) ReplaceFreelancerSkills(_ context.Context, userID uuid.UUID, skillIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.freelancerSkills[userID] = append([]uuid.UUID(nil), skillIDs...)
	return nil
}

func (r *UserRepo) TouchLastLogin(_ context.Context, userID uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[userID]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

// ---- freelancers ----

type FreelancerRepo struct{ s *Store }

func (s *Store) Freelancers() *FreelancerRepo { return &FreelancerRepo{s} }

var _ repository.FreelancerRepository = (*FreelancerRepo)(nil)

func (r *FreelancerRepo) cards(match func(*entity.FreelancerCard) bool) []*entity.FreelancerCard {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.FreelancerCard{}
	for id, p := range r.s.freelancers {
		u := r.s.users[id]
		if u == nil || !u.IsActive || !u.Role.IsFreelancer() {
			continue
		}
		uc, pc := *u, *p
		pc.Skills = r.s.skillsByIDs(r.s.freelancerSkills[id])
		card := &entity.FreelancerCard{User: &uc, Profile: &pc}
		if match(card) {
			out = append(out, card)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.Username < out[j].User.Username })
	return out
}

func (r *FreelancerRepo) List(_ context.Context, limit, offset int) ([]*entity.FreelancerCard, int, error) {
	all := r.cards(func(*entity.FreelancerCard) bool { return true })
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *FreelancerRepo) FindByUsername(_ context.Context, username string) (*entity.FreelancerCard, error) {
	found := r.cards(func(c *entity.FreelancerCard) bool { return c.User.Username == username })
	if len(found) == 0 {
		return nil, apperror.ErrFreelancerNotFound
	}
	return found[0], nil
}

func (r *FreelancerRepo) Top(_ context.Context, limit int) ([]*entity.FreelancerCard, error) {
	all := r.cards(func(*entity.FreelancerCard) bool { return true })
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i].Profile, all[j].Profile
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		return a.ReviewCount > b.ReviewCount
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *FreelancerRepo) Search(_ context.Context, q string, limit int) ([]*entity.FreelancerCard, error) {
	found := r.cards(func(c *entity.FreelancerCard) bool {
		u := c.User
		if contains(u.Username, q) || contains(u.Email, q) || contains(u.FirstName, q) || contains(u.LastName, q) {
			return true
		}
		for _, sk := range c.Profile.Skills {
			if contains(sk.Name, q) {
				return true
			}
		}
		return false
	})
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

func (r *FreelancerRepo) FindBySkills(_ context.Context, skillIDs []uuid.UUID) ([]*entity.FreelancerCard, error) {
	want := make(map[uuid.UUID]struct{}, len(skillIDs))
	for _, id := range skillIDs {
		want[id] = struct{}{}
	}
	return r.cards(func(c *entity.FreelancerCard) bool {
		return entity.CountOverlap(c.Profile.Skills, want) > 0
	}), nil
}

// ---- skills ----

type SkillRepo struct{ s *Store }

func (s *Store) Skills() *SkillRepo { return &SkillRepo{s} }

var _ repository.SkillRepository = (*SkillRepo)(nil)

func (r *SkillRepo) GetOrCreate(_ context.Context, names []string) ([]entity.Skill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Skill{}
	for _, name := range names {
		var found *entity.Skill
		for i := range r.s.skills {
			if r.s.skills[i].Name == name {
				found = &r.s.skills[i]
				break
			}
		}
		if found == nil {
			r.s.skills = append(r.s.skills, entity.Skill{ID: uuid.New(), Name: name, CreatedAt: time.Now()})
			found = &r.s.skills[len(r.s.skills)-1]
		}
		out = append(out, *found)
	}
	return out, nil
}

func (r *SkillRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Skill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := []entity.Skill{}
	for _, sk := range r.s.skills {
		if _, ok := want[sk.ID]; ok {
			out = append(out, sk)
		}
	}
	return out, nil
}

func (r *SkillRepo) List(context.Context) ([]entity.Skill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]entity.Skill{}, r.s.skills...), nil
}

// ---- reviews ----

type ReviewRepo struct{ s *Store }

func (s *Store) Reviews() *ReviewRepo { return &ReviewRepo{s} }

var _ repository.ReviewRepository = (*ReviewRepo)(nil)

func (r *ReviewRepo) Create(_ context.Context, review *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reviews {
		if existing.ClientID == review.ClientID && existing.FreelancerID == review.FreelancerID {
			return apperror.ErrDuplicateReview
		}
	}
	cp := *review
	r.s.reviews = append(r.s.reviews, &cp)
	return nil
}

func (r *ReviewRepo) ExistsForPair(_ context.Context, clientID, freelancerID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reviews {
		if existing.ClientID == clientID && existing.FreelancerID == freelancerID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ReviewRepo) ListByFreelancer(_ context.Context, freelancerID uuid.UUID) ([]*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Review{}
	for i := len(r.s.reviews) - 1; i >= 0; i-- {
		if rv := r.s.reviews[i]; rv.FreelancerID == freelancerID {
			cp := *rv
			cp.ClientUsername = r.s.username(rv.ClientID)
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *ReviewRepo) LockFreelancer(_ context.Context, freelancerID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.freelancers[freelancerID]; !ok {
		return apperror.ErrFreelancerNotFound
	}
	return nil
}

func (r *ReviewRepo) RatingsOf(_ context.Context, freelancerID uuid.UUID) ([]float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []float64
	for _, rv := range r.s.reviews {
		if rv.FreelancerID == freelancerID {
			out = append(out, rv.Rating)
		}
	}
	return out, nil
}

func (r *ReviewRepo) SaveRating(_ context.Context, freelancerID uuid.UUID, average float64, count int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.freelancers[freelancerID]
	if !ok {
		return apperror.ErrFreelancerNotFound
	}
	p.AverageRating, p.ReviewCount = average, count
	return nil
}

// ---- outbox ----

type OutboxRepo struct{ s *Store }

func (s *Store) OutboxWriter() *OutboxRepo { return &OutboxRepo{s} }

var _ repository.OutboxWriter = (*OutboxRepo)(nil)

func (r *OutboxRepo) Enqueue(_ context.Context, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.outbox = append(r.s.outbox, OutboxRecord{Event: event, Payload: raw})
	return nil
}
