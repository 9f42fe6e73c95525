package usecasetest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

type ListingRepo struct{ s *Store }

func (s *Store) Listings() *ListingRepo { return &ListingRepo{s} }

var _ repository.ListingRepository = (*ListingRepo)(nil)

// view копия заказа с подставленными именами и навыками. Вызывать под mu.
func (r *ListingRepo) view(l *entity.Listing) *entity.Listing {
	cp := *l
	cp.ClientUsername = r.s.username(l.ClientID)
	cp.FreelancerUsername = ""
	if l.FreelancerID != nil {
		id := *l.FreelancerID
		cp.FreelancerID = &id
		cp.FreelancerUsername = r.s.username(id)
	}
	cp.Skills = r.s.skillsByIDs(r.s.listingSkills[l.ID])
	return &cp
}

// newestFirst перебирает заказы от последнего созданного к первому. Вызывать под mu.
func (r *ListingRepo) newestFirst(match func(*entity.Listing) bool) []*entity.Listing {
	out := []*entity.Listing{}
	for i := len(r.s.listings) - 1; i >= 0; i-- {
		v := r.view(r.s.listings[i])
		if match(v) {
			out = append(out, v)
		}
	}
	return out
}

func (r *ListingRepo) Create(_ context.Context, l *entity.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.listings {
		if existing.Slug == l.Slug {
			return apperror.ErrSlugTaken
		}
	}
	cp := *l
	r.s.listings = append(r.s.listings, &cp)
	return nil
}

func (r *ListingRepo) Update(_ context.Context, l *entity.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.listings {
		if existing.ID == l.ID {
			cp := *l
			cp.Slug = existing.Slug
			cp.ClientID = existing.ClientID
			r.s.listings[i] = &cp
			return nil
		}
	}
	return apperror.ErrListingNotFound
}

func (r *ListingRepo) ReplaceSkills(_ context.Context, listingID uuid.UUID, skillIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.listingSkills[listingID] = append([]uuid.UUID(nil), skillIDs...)
	return nil
}

func (r *ListingRepo) FindBySlug(_ context.Context, slug string) (*entity.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	found := r.newestFirst(func(l *entity.Listing) bool { return l.Slug == slug })
	if len(found) == 0 {
		return nil, apperror.ErrListingNotFound
	}
	return found[0], nil
}

func (r *ListingRepo) LockBySlug(ctx context.Context, slug string) (*entity.Listing, error) {
	return r.FindBySlug(ctx, slug)
}

func (r *ListingRepo) SlugsWithBase(_ context.Context, base string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []string
	for _, l := range r.s.listings {
		if l.Slug == base || strings.HasPrefix(l.Slug, base+"-") {
			out = append(out, l.Slug)
		}
	}
	return out, nil
}

func (r *ListingRepo) ListOpen(_ context.Context, f repository.ListingFilter) ([]*entity.Listing, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.newestFirst(func(l *entity.Listing) bool {
		if l.Status != valueobject.ListingStatusOpen || l.FreelancerID != nil {
			return false
		}
		if f.MinPrice != nil && l.Price.Cents() < f.MinPrice.Cents() {
			return false
		}
		if f.MaxPrice != nil && l.Price.Cents() > f.MaxPrice.Cents() {
			return false
		}
		if len(f.Skills) > 0 {
			hit := false
			for _, sk := range l.Skills {
				for _, name := range f.Skills {
					if sk.Name == name {
						hit = true
					}
				}
			}
			if !hit {
				return false
			}
		}
		return true
	})
	total := len(all)
	if f.Limit > 0 {
		start := f.Offset
		if start > total {
			start = total
		}
		end := start + f.Limit
		if end > total {
			end = total
		}
		all = all[start:end]
	}
	return all, total, nil
}

func (r *ListingRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]*entity.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.newestFirst(func(l *entity.Listing) bool { return l.ClientID == clientID }), nil
}

func (r *ListingRepo) ListByFreelancer(_ context.Context, freelancerID uuid.UUID) ([]*entity.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.newestFirst(func(l *entity.Listing) bool { return l.IsAssignedTo(freelancerID) }), nil
}

func (r *ListingRepo) Search(_ context.Context, q string, limit int) ([]*entity.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	found := r.newestFirst(func(l *entity.Listing) bool { return contains(l.Title, q) })
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

func (r *ListingRepo) SkillIDsOfClient(_ context.Context, clientID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[uuid.UUID]struct{}{}
	var out []uuid.UUID
	for _, l := range r.s.listings {
		if l.ClientID != clientID {
			continue
		}
		for _, id := range r.s.listingSkills[l.ID] {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out, nil
}

// ---- interests ----

type InterestRepo struct{ s *Store }

func (s *Store) Interests() *InterestRepo { return &InterestRepo{s} }

var _ repository.InterestRepository = (*InterestRepo)(nil)

func (r *InterestRepo) Upsert(_ context.Context, interest *entity.Interest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.interests {
		if existing.ListingID == interest.ListingID && existing.FreelancerID == interest.FreelancerID {
			existing.ChatID = interest.ChatID
			return nil
		}
	}
	cp := *interest
	r.s.interests = append(r.s.interests, &cp)
	return nil
}

func (r *InterestRepo) Exists(_ context.Context, listingID, freelancerID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.interests {
		if existing.ListingID == listingID && existing.FreelancerID == freelancerID {
			return true, nil
		}
	}
	return false, nil
}

func (r *InterestRepo) ListByListing(_ context.Context, listingID uuid.UUID) ([]*entity.Interest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Interest{}
	for _, existing := range r.s.interests {
		if existing.ListingID == listingID {
			cp := *existing
			cp.FreelancerUsername = r.s.username(existing.FreelancerID)
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- chats ----

type ChatRepo struct{ s *Store }

func (s *Store) Chats() *ChatRepo { return &ChatRepo{s} }

var _ repository.ChatRepository = (*ChatRepo)(nil)

func (r *ChatRepo) view(c *entity.Chat, reader uuid.UUID) *entity.Chat {
	cp := *c
	cp.LowUsername = r.s.username(c.Participants.Low)
	cp.HighUsername = r.s.username(c.Participants.High)
	cp.UnreadCount = 0
	if reader != uuid.Nil {
		for _, m := range r.s.messages {
			if m.ChatID == c.ID && m.AuthorID != reader && !m.IsRead {
				cp.UnreadCount++
			}
		}
	}
	return &cp
}

func (r *ChatRepo) GetOrCreate(_ context.Context, pair entity.Pair) (*entity.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.chats {
		if c.Participants == pair {
			return r.view(c, uuid.Nil), nil
		}
	}
	c := &entity.Chat{ID: uuid.New(), Participants: pair, CreatedAt: time.Now()}
	r.s.chats = append(r.s.chats, c)
	return r.view(c, uuid.Nil), nil
}

func (r *ChatRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.chats {
		if c.ID == id {
			return r.view(c, uuid.Nil), nil
		}
	}
	return nil, apperror.ErrChatNotFound
}

func (r *ChatRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*entity.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Chat{}
	for i := len(r.s.chats) - 1; i >= 0; i-- {
		if c := r.s.chats[i]; c.IsParticipant(userID) {
			out = append(out, r.view(c, userID))
		}
	}
	return out, nil
}

func (r *ChatRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, c := range r.s.chats {
		if c.ID != id {
			continue
		}
		r.s.chats = append(r.s.chats[:i], r.s.chats[i+1:]...)
		kept := r.s.messages[:0]
		for _, m := range r.s.messages {
			if m.ChatID != id {
				kept = append(kept, m)
			}
		}
		r.s.messages = kept
		for _, in := range r.s.interests {
			if in.ChatID != nil && *in.ChatID == id {
				in.ChatID = nil
			}
		}
		return nil
	}
	return apperror.ErrChatNotFound
}

// ---- messages ----

type MessageRepo struct{ s *Store }

func (s *Store) Messages() *MessageRepo { return &MessageRepo{s} }

var _ repository.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(_ context.Context, msg *entity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *msg
	r.s.messages = append(r.s.messages, &cp)
	for _, c := range r.s.chats {
		if c.ID == msg.ChatID {
			at := msg.CreatedAt
			c.LastMessageAt = &at
		}
	}
	return nil
}

func (r *MessageRepo) ListByChat(_ context.Context, chatID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Message{}
	skipped := 0
	for _, m := range r.s.messages {
		if m.ChatID != chatID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		cp := *m
		cp.AuthorUsername = r.s.username(m.AuthorID)
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MessageRepo) MarkRead(_ context.Context, chatID, readerID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, m := range r.s.messages {
		if m.ChatID == chatID && m.AuthorID != readerID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}
