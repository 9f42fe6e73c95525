package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-marketplace/internal/db"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const userColumns = `u.id, u.username, u.first_name, u.last_name, u.email, u.password_hash, u.role,
	u.is_active, u.last_login_at, u.created_at, u.updated_at`

type UserRepositoryAdapter struct {
	db *sqlx.DB
	tx *Transactor
}

func NewUserRepositoryAdapter(db *sqlx.DB, tx *Transactor) *UserRepositoryAdapter {
	return &UserRepositoryAdapter{db: db, tx: tx}
}

func (r *UserRepositoryAdapter) Create(ctx context.Context, acc *entity.Account) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		u := acc.User
		q := conn(ctx, r.db)

		_, err := q.ExecContext(ctx, `
			INSERT INTO users (id, username, first_name, last_name, email, password_hash, role, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			u.ID, u.Username, u.FirstName, u.LastName, u.Email, u.PasswordHash, string(u.Role), u.IsActive, u.CreatedAt, u.UpdatedAt)
		switch {
		case db.IsUniqueViolation(err, "users_username_key"):
			return apperror.ErrUsernameTaken
		case db.IsUniqueViolation(err, "users_email_key"):
			return apperror.ErrEmailTaken
		case err != nil:
			return dbError(err, "не удалось создать пользователя")
		}

		return u.Role.Switch(
			func() error { return r.insertClientProfile(ctx, q, acc.Client) },
			func() error { return r.insertFreelancerProfile(ctx, q, acc.Freelancer) },
		)
	})
}

func (r *UserRepositoryAdapter) insertClientProfile(ctx context.Context, q querier, p *entity.ClientProfile) error {
	if p == nil {
		return apperror.New(apperror.ErrCodeInternal, "профиль заказчика не сформирован")
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO client_profiles (user_id, company_name, company_website, contact_name, contact_email, preferred_communication, image_path, video_path, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO NOTHING`,
		p.UserID, p.CompanyName, p.CompanyWebsite, p.ContactName, p.ContactEmail, string(p.PreferredCommunication), p.ImagePath, p.VideoPath, p.UpdatedAt)
	if err != nil {
		return dbError(err, "не удалось создать профиль заказчика")
	}
	return nil
}

func (r *UserRepositoryAdapter) insertFreelancerProfile(ctx context.Context, q querier, p *entity.FreelancerProfile) error {
	if p == nil {
		return apperror.New(apperror.ErrCodeInternal, "профиль фрилансера не сформирован")
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO freelancer_profiles (user_id, portfolio, average_rating, review_count, image_path, video_path, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO NOTHING`,
		p.UserID, p.Portfolio, p.AverageRating, p.ReviewCount, p.ImagePath, p.VideoPath, p.UpdatedAt)
	if err != nil {
		return dbError(err, "не удалось создать профиль фрилансера")
	}
	return nil
}

func (r *UserRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
}

func (r *UserRepositoryAdapter) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users u WHERE u.username = $1`, username)
}

func (r *UserRepositoryAdapter) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var row userRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, dbError(err, "не удалось получить пользователя")
	}
	return row.toEntity(), nil
}

func (r *UserRepositoryAdapter) GetAccount(ctx context.Context, userID uuid.UUID) (*entity.Account, error) {
	u, err := r.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	acc := &entity.Account{User: u}
	q := conn(ctx, r.db)
	err = u.Role.Switch(
		func() error {
			var row clientProfileRow
			if err := q.GetContext(ctx, &row, `
				SELECT user_id, company_name, company_website, contact_name, contact_email, preferred_communication, image_path, video_path, updated_at
				FROM client_profiles WHERE user_id = $1`, userID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return apperror.New(apperror.ErrCodeNotFound, "профиль заказчика не найден")
				}
				return dbError(err, "не удалось получить профиль заказчика")
			}
			acc.Client = row.toEntity()
			return nil
		},
		func() error {
			var row freelancerProfileRow
			if err := q.GetContext(ctx, &row, `
				SELECT user_id, portfolio, average_rating, review_count, image_path, video_path, updated_at
				FROM freelancer_profiles WHERE user_id = $1`, userID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return apperror.New(apperror.ErrCodeNotFound, "профиль фрилансера не найден")
				}
				return dbError(err, "не удалось получить профиль фрилансера")
			}
			acc.Freelancer = row.toEntity()
			skills, err := loadFreelancerSkills(ctx, q, []uuid.UUID{userID})
			if err != nil {
				return err
			}
			acc.Freelancer.Skills = skills[userID]
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (r *UserRepositoryAdapter) UpdateUser(ctx context.Context, u *entity.User) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE users SET first_name = $2, last_name = $3, email = $4, updated_at = $5 WHERE id = $1`,
		u.ID, u.FirstName, u.LastName, u.Email, u.UpdatedAt)
	if db.IsUniqueViolation(err, "users_email_key") {
		return apperror.ErrEmailTaken
	}
	if err != nil {
		return dbError(err, "не удалось обновить пользователя")
	}
	return nil
}

func (r *UserRepositoryAdapter) UpdateClientProfile(ctx context.Context, p *entity.ClientProfile) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE client_profiles SET company_name = $2, company_website = $3, contact_name = $4, contact_email = $5,
			preferred_communication = $6, image_path = $7, video_path = $8, updated_at = $9
		WHERE user_id = $1`,
		p.UserID, p.CompanyName, p.CompanyWebsite, p.ContactName, p.ContactEmail, string(p.PreferredCommunication), p.ImagePath, p.VideoPath, p.UpdatedAt)
	if err != nil {
		return dbError(err, "не удалось обновить профиль заказчика")
	}
	return nil
}

func (r *UserRepositoryAdapter) UpdateFreelancerProfile(ctx context.Context, p *entity.FreelancerProfile) error {
	// average_rating и review_count здесь не трогаем: их пишет только пересчёт по отзывам.
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE freelancer_profiles SET portfolio = $2, image_path = $3, video_path = $4, updated_at = $5
		WHERE user_id = $1`,
		p.UserID, p.Portfolio, p.ImagePath, p.VideoPath, p.UpdatedAt)
	if err != nil {
		return dbError(err, "не удалось обновить профиль фрилансера")
	}
	return nil
}

func (r *UserRepositoryAdapter) ReplaceFreelancerSkills(ctx context.Context, userID uuid.UUID, skillIDs []uuid.UUID) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		q := conn(ctx, r.db)
		if _, err := q.ExecContext(ctx, `DELETE FROM freelancer_skills WHERE user_id = $1`, userID); err != nil {
			return dbError(err, "не удалось обновить навыки фрилансера")
		}
		if len(skillIDs) == 0 {
			return nil
		}
		if _, err := q.ExecContext(ctx, `
			INSERT INTO freelancer_skills (user_id, skill_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT DO NOTHING`, userID, uuidArray(skillIDs)); err != nil {
			return dbError(err, "не удалось обновить навыки фрилансера")
		}
		return nil
	})
}

func (r *UserRepositoryAdapter) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, userID, at); err != nil {
		return dbError(err, "не удалось обновить время входа")
	}
	return nil
}

type userRow struct {
	ID           uuid.UUID  `db:"id"`
	Username     string     `db:"username"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Role         string     `db:"role"`
	IsActive     bool       `db:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (u *userRow) toEntity() *entity.User {
	return &entity.User{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         valueobject.Role(u.Role),
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

type clientProfileRow struct {
	UserID                 uuid.UUID `db:"user_id"`
	CompanyName            string    `db:"company_name"`
	CompanyWebsite         string    `db:"company_website"`
	ContactName            string    `db:"contact_name"`
	ContactEmail           string    `db:"contact_email"`
	PreferredCommunication string    `db:"preferred_communication"`
	ImagePath              string    `db:"image_path"`
	VideoPath              string    `db:"video_path"`
	UpdatedAt              time.Time `db:"updated_at"`
}

func (p *clientProfileRow) toEntity() *entity.ClientProfile {
	return &entity.ClientProfile{
		UserID:                 p.UserID,
		CompanyName:            p.CompanyName,
		CompanyWebsite:         p.CompanyWebsite,
		ContactName:            p.ContactName,
		ContactEmail:           p.ContactEmail,
		PreferredCommunication: valueobject.CommunicationChannel(p.PreferredCommunication),
		ImagePath:              p.ImagePath,
		VideoPath:              p.VideoPath,
		UpdatedAt:              p.UpdatedAt,
	}
}

type freelancerProfileRow struct {
	UserID        uuid.UUID `db:"user_id"`
	Portfolio     string    `db:"portfolio"`
	AverageRating float64   `db:"average_rating"`
	ReviewCount   int       `db:"review_count"`
	ImagePath     string    `db:"image_path"`
	VideoPath     string    `db:"video_path"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (p *freelancerProfileRow) toEntity() *entity.FreelancerProfile {
	return &entity.FreelancerProfile{
		UserID:        p.UserID,
		Portfolio:     p.Portfolio,
		AverageRating: p.AverageRating,
		ReviewCount:   p.ReviewCount,
		ImagePath:     p.ImagePath,
		VideoPath:     p.VideoPath,
		UpdatedAt:     p.UpdatedAt,
	}
}

type ownedSkillRow struct {
	OwnerID   uuid.UUID `db:"owner_id"`
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func groupSkills(rows []ownedSkillRow) map[uuid.UUID][]entity.Skill {
	out := make(map[uuid.UUID][]entity.Skill)
	for _, row := range rows {
		out[row.OwnerID] = append(out[row.OwnerID], entity.Skill{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt})
	}
	return out
}

func loadFreelancerSkills(ctx context.Context, q querier, userIDs []uuid.UUID) (map[uuid.UUID][]entity.Skill, error) {
	if len(userIDs) == 0 {
		return map[uuid.UUID][]entity.Skill{}, nil
	}
	var rows []ownedSkillRow
	if err := q.SelectContext(ctx, &rows, `
		SELECT fs.user_id AS owner_id, s.id, s.name, s.created_at
		FROM freelancer_skills fs
		JOIN skills s ON s.id = fs.skill_id
		WHERE fs.user_id = ANY($1::uuid[])
		ORDER BY s.name`, uuidArray(userIDs)); err != nil {
		return nil, dbError(err, "не удалось получить навыки фрилансеров")
	}
	return groupSkills(rows), nil
}
