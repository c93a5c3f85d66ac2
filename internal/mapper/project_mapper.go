package mapper

import (
	"encoding/json"

	"typst-collab-be/internal/entity"
	"typst-collab-be/internal/filetree"
	"typst-collab-be/internal/model"

	"github.com/google/uuid"
)

type ProjectMapper struct{}

func NewProjectMapper() *ProjectMapper {
	return &ProjectMapper{}
}

func (m *ProjectMapper) ToModel(e *entity.Project) (*model.Project, error) {
	tree, err := json.Marshal(e.Tree)
	if err != nil {
		return nil, err
	}
	shared, err := json.Marshal(e.SharedUsers)
	if err != nil {
		return nil, err
	}
	return &model.Project{
		Id:          e.Id,
		Title:       e.Title,
		UserId:      e.UserId,
		SharedUsers: shared,
		Tree:        tree,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}, nil
}

func (m *ProjectMapper) ToEntity(mdl *model.Project) (*entity.Project, error) {
	var tree filetree.Node
	if err := json.Unmarshal(mdl.Tree, &tree); err != nil {
		return nil, err
	}
	var shared []uuid.UUID
	if len(mdl.SharedUsers) > 0 {
		if err := json.Unmarshal(mdl.SharedUsers, &shared); err != nil {
			return nil, err
		}
	}
	return &entity.Project{
		Id:          mdl.Id,
		Title:       mdl.Title,
		UserId:      mdl.UserId,
		SharedUsers: shared,
		Tree:        &tree,
		CreatedAt:   mdl.CreatedAt,
		UpdatedAt:   mdl.UpdatedAt,
	}, nil
}

func (m *ProjectMapper) ToEntities(models []*model.Project) ([]*entity.Project, error) {
	entities := make([]*entity.Project, 0, len(models))
	for _, mdl := range models {
		e, err := m.ToEntity(mdl)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}
