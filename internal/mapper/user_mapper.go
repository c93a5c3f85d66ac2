package mapper

import (
	"typst-collab-be/internal/entity"
	"typst-collab-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToModel(e *entity.User) *model.User {
	return &model.User{
		Id:           e.Id,
		Email:        e.Email,
		FullName:     e.FullName,
		PasswordHash: e.PasswordHash,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func (m *UserMapper) ToEntity(mdl *model.User) *entity.User {
	return &entity.User{
		Id:           mdl.Id,
		Email:        mdl.Email,
		FullName:     mdl.FullName,
		PasswordHash: mdl.PasswordHash,
		CreatedAt:    mdl.CreatedAt,
		UpdatedAt:    mdl.UpdatedAt,
	}
}
