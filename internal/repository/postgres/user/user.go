package user

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/errs"
	"lunch/backend/internal/pkg/repository/postgresql"
	"lunch/backend/internal/repository/postgres"
)

const MinPasswordLength = 6

var ErrInvalidCredentials = errs.New(errs.Validation, "incorrect username or password")

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// Authenticate returns the user matching username and password.
func (r Repository) Authenticate(ctx context.Context, username, password string) (entity.User, error) {
	var detail entity.User

	err := r.NewSelect().Model(&detail).Relation("Role").Where("username = ?", strings.TrimSpace(username)).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return entity.User{}, errors.Wrap(err, "selecting user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(detail.Password), []byte(password)); err != nil {
		return entity.User{}, ErrInvalidCredentials
	}

	return detail, nil
}

func (r Repository) GetByID(ctx context.Context, id int) (entity.User, error) {
	var detail entity.User

	err := r.NewSelect().Model(&detail).Relation("Role").Where("u.id = ?", id).Scan(ctx)
	if err != nil {
		return entity.User{}, postgresql.Translate(err, "user")
	}

	return detail, nil
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	whereQuery := "WHERE TRUE"
	var args []interface{}

	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		whereQuery += " AND u.username ILIKE ?"
		args = append(args, postgres.Like(strings.TrimSpace(*filter.Search)))
	}

	query := fmt.Sprintf(`
		SELECT
			u.id,
			u.username,
			u.role_id,
			r.name
		FROM users u
		JOIN roles r ON r.id = u.role_id
		%s
		ORDER BY u.username ASC %s
	`, whereQuery, postgres.Pagination(filter.Limit, filter.Offset, filter.Page))

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "selecting users")
	}
	defer rows.Close()

	list := make([]GetListResponse, 0)
	for rows.Next() {
		var detail GetListResponse
		if err := rows.Scan(&detail.ID, &detail.Username, &detail.RoleID, &detail.Role); err != nil {
			return nil, 0, errors.Wrap(err, "scanning user list")
		}
		list = append(list, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "scanning user list")
	}

	var count int
	if err := r.QueryRowContext(ctx, "SELECT count(u.id) FROM users u "+whereQuery, args...).Scan(&count); err != nil {
		return nil, 0, errors.Wrap(err, "counting users")
	}

	return list, count, nil
}

func (r Repository) Roles(ctx context.Context) ([]entity.Role, error) {
	list := make([]entity.Role, 0)

	if err := r.NewSelect().Model(&list).Order("id ASC").Scan(ctx); err != nil {
		return nil, errors.Wrap(err, "selecting roles")
	}

	return list, nil
}

func (r Repository) Save(ctx context.Context, request SaveRequest) (entity.User, error) {
	u := entity.User{
		ID:       request.ID,
		Username: strings.TrimSpace(request.Username),
		RoleID:   request.RoleID,
	}
	if u.Username == "" {
		return entity.User{}, errs.New(errs.Validation, "username is required")
	}

	if request.Password != "" || u.ID == 0 {
		hash, err := hashPassword(request.Password)
		if err != nil {
			return entity.User{}, err
		}
		u.Password = hash
	}

	var err error
	if u.ID == 0 {
		_, err = r.NewInsert().Model(&u).Returning("id").Exec(ctx)
	} else {
		columns := []string{"username", "role_id"}
		if u.Password != "" {
			columns = append(columns, "password")
		}

		var res sql.Result
		res, err = r.NewUpdate().Model(&u).Column(columns...).WherePK().Exec(ctx)
		if err == nil {
			if n, _ := res.RowsAffected(); n == 0 {
				return entity.User{}, errs.New(errs.NotFound, "user not found")
			}
		}
	}
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return entity.User{}, errs.Wrap(errs.Validation, err, "role does not exist")
		}
		return entity.User{}, postgres.NameTaken(errors.Wrap(err, "saving user"), "username", u.Username)
	}

	u.Password = ""
	return u, nil
}

// Delete removes a user. Nobody may delete themselves or the last
// administrator.
func (r Repository) Delete(ctx context.Context, id, currentUserID int) error {
	if id == currentUserID {
		return errs.New(errs.Conflict, "you cannot delete yourself")
	}

	return r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var target entity.User
		err := tx.NewSelect().Model(&target).Relation("Role").Where("u.id = ?", id).For("UPDATE OF u").Scan(ctx)
		if err != nil {
			return postgresql.Translate(err, "user")
		}

		if target.Role != nil && target.Role.Name == entity.RoleAdmin {
			admins, err := tx.NewSelect().Model((*entity.User)(nil)).Where("role_id = ?", target.RoleID).Count(ctx)
			if err != nil {
				return errors.Wrap(err, "counting administrators")
			}
			if admins <= 1 {
				return errs.New(errs.Conflict, "the last administrator cannot be deleted")
			}
		}

		return postgres.DeleteByID(ctx, tx, "users", id, "user")
	})
}

func (r Repository) ChangePassword(ctx context.Context, request ChangePasswordRequest) (string, error) {
	if request.UserID == 0 || request.NewPassword == "" || request.ConfirmPassword == "" {
		return "", errs.New(errs.Validation, "all fields are required")
	}
	if request.NewPassword != request.ConfirmPassword {
		return "", errs.New(errs.Validation, "passwords do not match")
	}

	hash, err := hashPassword(request.NewPassword)
	if err != nil {
		return "", err
	}

	var username string
	_, err = r.NewUpdate().
		Model((*entity.User)(nil)).
		Set("password = ?", hash).
		Where("id = ?", request.UserID).
		Returning("username").
		Exec(ctx, &username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errs.New(errs.NotFound, "user not found")
	}
	if err != nil {
		return "", errors.Wrap(err, "updating password")
	}
	if username == "" {
		return "", errs.New(errs.NotFound, "user not found")
	}

	return username, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", errs.Newf(errs.Validation, "the password must have at least %d characters", MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}

	return string(hash), nil
}
