package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"typst-collab-be/internal/dto"
	"typst-collab-be/internal/entity"
	"typst-collab-be/internal/filetree"
	"typst-collab-be/internal/pkg/mailer"
	"typst-collab-be/internal/repository/contract"
	"typst-collab-be/internal/repository/specification"
	"typst-collab-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

var ErrProjectAccess = errors.New("no access to this project")

type IProjectService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ProjectSummaryResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowProjectResponse, error)
	SaveTree(ctx context.Context, userId uuid.UUID, id uuid.UUID, tree *filetree.Node) error
	Share(ctx context.Context, userId uuid.UUID, id uuid.UUID, email string) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error

	// AccessDirectory for the collaboration hub.
	CheckAccess(ctx context.Context, userID, projectID uuid.UUID) (bool, error)
	ResolveEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

type projectService struct {
	projectRepo  contract.ProjectRepository
	userRepo     contract.UserRepository
	emailService mailer.IEmailService
	pubSub       *gochannel.GoChannel
}

func NewProjectService(
	projectRepo contract.ProjectRepository,
	userRepo contract.UserRepository,
	emailService mailer.IEmailService,
	pubSub *gochannel.GoChannel,
) IProjectService {
	return &projectService{
		projectRepo:  projectRepo,
		userRepo:     userRepo,
		emailService: emailService,
		pubSub:       pubSub,
	}
}

func (s *projectService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error) {
	tree := req.Template
	if tree == nil {
		tree = filetree.Skeleton(req.Title)
	} else if tree.MainFile() == nil {
		// An imported template must still have exactly one entry point.
		if main := tree.Find(filetree.ParsePath("main.typ")); main != nil {
			filetree.SetMain(tree, filetree.ParsePath("main.typ"))
		} else {
			return nil, errors.New("template has no main file")
		}
	}

	project := &entity.Project{
		Id:        uuid.New(),
		Title:     req.Title,
		UserId:    userId,
		Tree:      tree,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return &dto.CreateProjectResponse{Id: project.Id}, nil
}

func (s *projectService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ProjectSummaryResponse, error) {
	projects, err := s.projectRepo.FindAll(ctx, specification.AccessibleBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	result := make([]*dto.ProjectSummaryResponse, 0, len(projects))
	for _, p := range projects {
		result = append(result, &dto.ProjectSummaryResponse{
			Id:        p.Id,
			Title:     p.Title,
			Owner:     p.UserId == userId,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
	}
	return result, nil
}

func (s *projectService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowProjectResponse, error) {
	project, err := s.accessibleProject(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	return &dto.ShowProjectResponse{
		Id:          project.Id,
		Title:       project.Title,
		Tree:        project.Tree,
		SharedUsers: project.SharedUsers,
		Owner:       project.UserId == userId,
	}, nil
}

// SaveTree accepts the client's full-tree snapshot and queues it for
// persistence. The write happens on the consumer side; a burst of saves
// from a busy room does not block the request path.
func (s *projectService) SaveTree(ctx context.Context, userId uuid.UUID, id uuid.UUID, tree *filetree.Node) error {
	if _, err := s.accessibleProject(ctx, userId, id); err != nil {
		return err
	}

	raw, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(events.SnapshotSaveMessage{
		ProjectId:  id,
		Tree:       raw,
		OccurredAt: time.Now(),
	})
	if err != nil {
		return err
	}
	return s.pubSub.Publish(events.TopicSnapshotSave, message.NewMessage(watermill.NewUUID(), payload))
}

// Share adds a user to the project's shared list by email and sends them
// an invitation. Only the owner may share.
func (s *projectService) Share(ctx context.Context, userId uuid.UUID, id uuid.UUID, email string) error {
	project, err := s.projectRepo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if project == nil || project.UserId != userId {
		return ErrProjectAccess
	}

	invited, err := s.userRepo.FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return err
	}
	if invited == nil {
		return errors.New("no user with that email")
	}
	for _, existing := range project.SharedUsers {
		if existing == invited.Id {
			return nil
		}
	}

	project.SharedUsers = append(project.SharedUsers, invited.Id)
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return err
	}

	owner, _ := s.userRepo.FindOne(ctx, specification.ByID{ID: userId})
	ownerEmail := ""
	if owner != nil {
		ownerEmail = owner.Email
	}
	// Invitation mail is best-effort; the share is already persisted.
	s.emailService.SendProjectInvitation(email, ownerEmail, project.Title)
	return nil
}

func (s *projectService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	project, err := s.projectRepo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if project == nil || project.UserId != userId {
		return ErrProjectAccess
	}
	return s.projectRepo.Delete(ctx, id)
}

func (s *projectService) CheckAccess(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	count, err := s.projectRepo.Count(ctx,
		specification.ByID{ID: projectID},
		specification.AccessibleBy{UserID: userID},
	)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *projectService) ResolveEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.userRepo.FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}
	return user.Email, nil
}

func (s *projectService) accessibleProject(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*entity.Project, error) {
	project, err := s.projectRepo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if project == nil || !project.AccessibleBy(userId) {
		return nil, ErrProjectAccess
	}
	return project, nil
}
