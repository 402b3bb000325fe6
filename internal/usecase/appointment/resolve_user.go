package appointment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/companion-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/companion-booking/internal/httperr"
	"github.com/BruksfildServices01/companion-booking/internal/models"
)

const warnInferredExisting = "Tipo de usuário inferido como existente: e-mail e senha informados sem nome."

// resolveUser roda dentro da transação da fase 1. Devolve o usuário e os
// avisos de inferência que vão para a resposta.
func resolveUser(
	ctx context.Context,
	repo domain.Repository,
	req bookingRequest,
	log *zap.Logger,
) (*models.User, []string, error) {

	var warnings []string

	hasName := req.Name != ""
	hasEmail := req.Email != ""
	hasPassword := req.Password != ""

	origin := req.Origin

	// --------------------------------------------------
	// 1️⃣ Inferência: e-mail + senha sem nome é login
	// --------------------------------------------------
	if hasEmail && hasPassword && !hasName &&
		(origin == "" || origin == domain.OriginNew) {
		log.Warn("user type inferred as existing",
			zap.String("hint", string(req.Origin)),
			zap.String("email", req.Email),
		)
		warnings = append(warnings, warnInferredExisting)
		origin = domain.OriginExisting
	}

	var (
		user *models.User
		err  error
	)

	switch {
	// --------------------------------------------------
	// 2️⃣ Novo usuário
	// --------------------------------------------------
	case origin == domain.OriginNew && hasName && hasEmail:
		user, err = insertOrReuseUser(ctx, repo, req, domain.OriginNew)

	// --------------------------------------------------
	// 3️⃣ Usuário existente
	// --------------------------------------------------
	case origin == domain.OriginExisting && hasEmail && hasPassword:
		user, err = authenticate(ctx, repo, req.Email, req.Password)

	// --------------------------------------------------
	// 4️⃣ Convidado
	// --------------------------------------------------
	case origin == domain.OriginGuest && hasName && hasEmail:
		user, err = insertOrReuseUser(ctx, repo, req, domain.OriginGuest)

	// --------------------------------------------------
	// 5️⃣ Última tentativa de inferência
	// --------------------------------------------------
	case hasEmail && hasPassword && !hasName:
		log.Warn("user type inferred as existing on fallback",
			zap.String("hint", string(req.Origin)),
			zap.String("email", req.Email),
		)
		if len(warnings) == 0 {
			warnings = append(warnings, warnInferredExisting)
		}
		user, err = authenticate(ctx, repo, req.Email, req.Password)

	default:
		return nil, warnings, httperr.ErrBusiness("unrecognized_user_type")
	}

	if err != nil {
		return nil, warnings, err
	}

	// --------------------------------------------------
	// 6️⃣ Sem id nunca segue adiante
	// --------------------------------------------------
	if user == nil || user.ID == 0 {
		return nil, warnings, errors.New("user resolution produced no id")
	}

	return user, warnings, nil
}

// insertOrReuseUser trata e-mail duplicado como "reaproveitar o cadastro".
func insertOrReuseUser(
	ctx context.Context,
	repo domain.Repository,
	req bookingRequest,
	origin domain.UserOrigin,
) (*models.User, error) {

	u := &models.User{
		Name:    req.Name,
		Email:   req.Email,
		Contact: req.Contact,
		CPF:     req.CPF,
		Type:    string(origin),
		Role:    domain.RoleClient,
	}

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		h := string(hash)
		u.PasswordHash = &h
	}

	created, err := repo.CreateUserIfAbsent(ctx, u)
	if err != nil {
		return nil, err
	}
	if created {
		return u, nil
	}

	return repo.FindUserByEmail(ctx, req.Email)
}

// authenticate distingue e-mail inexistente de senha errada.
func authenticate(
	ctx context.Context,
	repo domain.Repository,
	email string,
	password string,
) (*models.User, error) {

	user, err := repo.FindUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.ErrBusiness("user_not_found")
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(user, password) {
		return nil, httperr.ErrBusiness("wrong_password")
	}
	return user, nil
}

func CheckPassword(u *models.User, password string) bool {
	if u.PasswordHash == nil || *u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)) == nil
}
