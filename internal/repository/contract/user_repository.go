package contract

import (
	"context"

	"typst-collab-be/internal/entity"
	"typst-collab-be/internal/repository/specification"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
}
