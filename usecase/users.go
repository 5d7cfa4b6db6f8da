package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/pophero110/trackly-sub002/model"
	"github.com/pophero110/trackly-sub002/repository"
	"github.com/pophero110/trackly-sub002/services"
	"github.com/pophero110/trackly-sub002/utils"
)

var ErrEmailTaken = errors.New("email already registered")

type UserService struct {
	UsersRepo *repository.UserRepo
}

// CreateUser registers a new user. The password arrives in plain text
// and is stored hashed; the email must not already be registered.
func (svc *UserService) CreateUser(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	existing, err := svc.UsersRepo.FindUserByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := services.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UserID:    utils.NewID(),
		Email:     req.Email,
		Name:      req.Name,
		Password:  hashed,
		CreatedAt: time.Now(),
	}

	if _, err := svc.UsersRepo.AddUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (svc *UserService) FindUserByEmail(email string) (*model.User, error) {
	return svc.UsersRepo.FindUserByEmail(email)
}
