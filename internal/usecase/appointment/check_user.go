package appointment

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/companion-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/companion-booking/internal/httperr"
)

type CheckUserInput struct {
	Email    string
	Password string
}

type CheckUserResult struct {
	Exists bool
	// UserID só é preenchido quando a senha confere.
	UserID *uint
	// Authenticated indica se a checagem foi de login (com senha).
	Authenticated bool
}

type CheckUser struct {
	repo domain.Repository
}

func NewCheckUser(repo domain.Repository) *CheckUser {
	return &CheckUser{repo: repo}
}

// Execute sem senha só informa se o e-mail existe; com senha faz o login.
func (uc *CheckUser) Execute(
	ctx context.Context,
	in CheckUserInput,
) (*CheckUserResult, error) {

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, httperr.ErrBusiness("email_required")
	}

	user, err := uc.repo.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	exists := err == nil

	if strings.TrimSpace(in.Password) == "" {
		return &CheckUserResult{Exists: exists}, nil
	}

	res := &CheckUserResult{Exists: exists, Authenticated: true}
	if exists && CheckPassword(user, in.Password) {
		res.UserID = &user.ID
	}
	return res, nil
}
