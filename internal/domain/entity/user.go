package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/validation"
)

type User struct {
	ID           uuid.UUID
	Username     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         valueobject.Role
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser проверяет регистрационные данные и собирает пользователя.
// Хеш пароля вычисляется вызывающей стороной.
func NewUser(username, firstName, lastName, email, passwordHash string, role valueobject.Role) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidatePersonName("имя", firstName); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidatePersonName("фамилия", lastName); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Username:     username,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserPatch частичное обновление базовых полей пользователя.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
}

func (u *User) Apply(p UserPatch) error {
	if p.FirstName != nil {
		if err := validation.ValidatePersonName("имя", *p.FirstName); err != nil {
			return apperror.Validation(err.Error())
		}
		u.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		if err := validation.ValidatePersonName("фамилия", *p.LastName); err != nil {
			return apperror.Validation(err.Error())
		}
		u.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*p.Email))
		if err := validation.ValidateEmail(email); err != nil {
			return apperror.Validation(err.Error())
		}
		u.Email = email
	}
	u.UpdatedAt = time.Now()
	return nil
}

type ClientProfile struct {
	UserID                 uuid.UUID
	CompanyName            string
	CompanyWebsite         string
	ContactName            string
	ContactEmail           string
	PreferredCommunication valueobject.CommunicationChannel
	ImagePath              string
	VideoPath              string
	UpdatedAt              time.Time
}

func NewClientProfile(u *User) *ClientProfile {
	p := &ClientProfile{
		UserID:                 u.ID,
		PreferredCommunication: valueobject.CommunicationEmail,
	}
	p.Sync(u)
	return p
}

// Sync пересчитывает контактные поля из пользователя. Напрямую они не редактируются.
func (p *ClientProfile) Sync(u *User) {
	p.ContactName = u.FullName()
	p.ContactEmail = u.Email
	p.UpdatedAt = time.Now()
}

type ClientProfilePatch struct {
	CompanyName            *string
	CompanyWebsite         *string
	PreferredCommunication *string
}

func (p *ClientProfile) Apply(patch ClientProfilePatch) error {
	if patch.CompanyName != nil {
		name := strings.TrimSpace(*patch.CompanyName)
		if err := validation.ValidateLength("название компании", name, 0, validation.MaxCompanyNameLength); err != nil {
			return apperror.Validation(err.Error())
		}
		p.CompanyName = name
	}
	if patch.CompanyWebsite != nil {
		if err := validation.ValidateExternalLink("сайт компании", *patch.CompanyWebsite); err != nil {
			return apperror.Validation(err.Error())
		}
		p.CompanyWebsite = strings.TrimSpace(*patch.CompanyWebsite)
	}
	if patch.PreferredCommunication != nil {
		channel, err := valueobject.NewCommunicationChannel(*patch.PreferredCommunication)
		if err != nil {
			return err
		}
		p.PreferredCommunication = channel
	}
	return nil
}

type FreelancerProfile struct {
	UserID        uuid.UUID
	Portfolio     string
	Skills        []Skill
	AverageRating float64
	ReviewCount   int
	ImagePath     string
	VideoPath     string
	UpdatedAt     time.Time
}

func NewFreelancerProfile(u *User) *FreelancerProfile {
	return &FreelancerProfile{UserID: u.ID, UpdatedAt: time.Now()}
}

func (p *FreelancerProfile) SetPortfolio(link string) error {
	if err := validation.ValidateExternalLink("портфолио", link); err != nil {
		return apperror.Validation(err.Error())
	}
	p.Portfolio = strings.TrimSpace(link)
	p.UpdatedAt = time.Now()
	return nil
}

func (p *FreelancerProfile) SkillIDs() []uuid.UUID {
	return SkillIDs(p.Skills)
}

// Account пользователь вместе с профилем его роли. Заполнен ровно один из
// указателей Client и Freelancer.
type Account struct {
	User       *User
	Client     *ClientProfile
	Freelancer *FreelancerProfile
}

// NewAccount создаёт профиль, соответствующий роли пользователя.
func NewAccount(u *User) (*Account, error) {
	acc := &Account{User: u}
	err := u.Role.Switch(
		func() error { acc.Client = NewClientProfile(u); return nil },
		func() error { acc.Freelancer = NewFreelancerProfile(u); return nil },
	)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// FreelancerCard фрилансер в списках и поиске.
type FreelancerCard struct {
	User    *User
	Profile *FreelancerProfile
}
