package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"group-lab/contract"
	"group-lab/domain"
	"group-lab/errors"
	"group-lab/policy"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

type IGroupService interface {
	CreateGroup(ctx context.Context, name, description string, groupType domain.GroupType, ownerID string) (domain.Group, error)
	RequestToJoin(ctx context.Context, groupID, userID string) (domain.JoinRequest, error)
	ApproveJoinRequest(ctx context.Context, groupID, requestID, approverID string) (domain.Membership, error)
	RejectJoinRequest(ctx context.Context, groupID, requestID, approverID string) (domain.JoinRequest, error)
	AddMemberToPrivateGroup(ctx context.Context, groupID, actorID, targetID string) (domain.Membership, error)
	UpdateMemberRole(ctx context.Context, groupID, actorID, targetID string, role domain.Role) (domain.Membership, error)
	RemoveMember(ctx context.Context, groupID, actorID, targetID string) error
	LeaveGroup(ctx context.Context, groupID, userID string) (domain.Group, error)
	GroupMembers(ctx context.Context, groupID string) ([]domain.Membership, error)
	ListJoinRequests(ctx context.Context, groupID, actorID string, status *domain.RequestStatus) ([]domain.JoinRequest, error)
	ListGroups(ctx context.Context) ([]domain.Group, error)
}

// GroupService implements the membership workflows. Every operation
// performs its reads and writes inside one unit of work, so partial
// states (a group without its owner membership, an approved request
// without the member row) cannot be observed or persisted.
type GroupService struct {
	uow   contract.UnitOfWork
	users contract.IUserDirectory
	log   *slog.Logger
}

func NewGroupService(uow contract.UnitOfWork, users contract.IUserDirectory, log *slog.Logger) IGroupService {
	return &GroupService{uow: uow, users: users, log: log}
}

var validate = validator.New()

type createGroupInput struct {
	Name string           `validate:"required,max=120"`
	Type domain.GroupType `validate:"required,oneof=PUBLIC PRIVATE"`
}

func validateCreateGroup(name string, groupType domain.GroupType) error {
	err := validate.Struct(createGroupInput{Name: name, Type: groupType})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Field() == "Type" {
				return fmt.Errorf("%w: got %q", errors.ErrInvalidGroupType, groupType)
			}
		}
		return errors.ErrInvalidGroupName
	}
	return err
}

// CreateGroup persists the group and its owner's ADMIN membership
// atomically. The owner must exist in the directory.
func (s *GroupService) CreateGroup(ctx context.Context, name, description string, groupType domain.GroupType, ownerID string) (domain.Group, error) {
	name = strings.TrimSpace(name)
	if err := validateCreateGroup(name, groupType); err != nil {
		return domain.Group{}, err
	}
	if _, err := s.users.UserByID(ownerID); err != nil {
		return domain.Group{}, err
	}

	group := domain.NewGroup(name, strings.TrimSpace(description), groupType, ownerID, time.Now().UTC())
	err := s.uow.ReadWrite(ctx, func(tx contract.Tx) error {
		if err := tx.Groups().Create(group); err != nil {
			return err
		}
		return tx.Members().Put(domain.NewMembership(group.ID, ownerID, domain.RoleAdmin, group.CreatedAt))
	})
	if err != nil {
		return domain.Group{}, err
	}

	s.log.Info("group created",
		slog.String("group_id", group.ID),
		slog.String("type", string(group.Type)),
		slog.String("owner_id", ownerID))
	return group, nil
}

// RequestToJoin files a PENDING join request against a public group.
// A user who already belongs to the group, or who already has a request
// in flight, gets a conflict. A rejected user may file again.
func (s *GroupService) RequestToJoin(ctx context.Context, groupID, userID string) (domain.JoinRequest, error) {
	if _, err := s.users.UserByID(userID); err != nil {
		return domain.JoinRequest{}, err
	}

	var request domain.JoinRequest
	err := s.uow.ReadWrite(ctx, func(tx contract.Tx) error {
		group, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}
		if group.Type != domain.GroupPublic {
			return errors.ErrGroupNotPublic
		}

		member, err := membershipOf(tx, groupID, userID)
		if err != nil {
			return err
		}
		if member != nil {
			return errors.ErrAlreadyMember
		}

		request = domain.NewJoinRequest(groupID, userID, time.Now().UTC())
		return tx.Requests().Create(request)
	})
	if err != nil {
		return domain.JoinRequest{}, err
	}

	s.log.Info("join request filed",
		slog.String("group_id", groupID),
		slog.String("user_id", userID),
		slog.String("request_id", request.ID))
	return request, nil
}

// ApproveJoinRequest turns a PENDING request into a MEMBER membership.
// The status change and the member row commit together.
func (s *GroupService) ApproveJoinRequest(ctx context.Context, groupID, requestID, approverID string) (domain.Membership, error) {
	var membership domain.Membership
	err := s.uow.ReadWrite(ctx, func(tx contract.Tx) error {
		request, err := s.loadScopedRequest(tx, groupID, requestID, approverID)
		if err != nil {
			return err
		}

		if err = request.Approve(time.Now().UTC()); err != nil {
			return err
		}

		// The requester may have been added through another path since
		// filing; the uniqueness rule wins over the approval.
		member, err := membershipOf(tx, groupID, request.UserID)
		if err != nil {
			return err
		}
		if member != nil {
			return errors.ErrAlreadyMember
		}

		if err = tx.Requests().Update(request); err != nil {
			return err
		}
		membership = domain.NewMembership(groupID, request.UserID, domain.RoleMember, request.ResolvedAt)
		return tx.Members().Put(membership)
	})
	if err != nil {
		return domain.Membership{}, err
	}

	s.log.Info("join request approved",
		slog.String("group_id", groupID),
		slog.String("request_id", requestID),
		slog.String("approver_id", approverID))
	return membership, nil
}

// RejectJoinRequest closes a PENDING request without granting
// membership. The user may request again afterwards.
func (s *GroupService) RejectJoinRequest(ctx context.Context, groupID, requestID, approverID string) (domain.JoinRequest, error) {
	var request domain.JoinRequest
	err := s.uow.ReadWrite(ctx, func(tx contract.Tx) error {
		loaded, err := s.loadScopedRequest(tx, groupID, requestID, approverID)
		if err != nil {
			return err
		}

		if err = loaded.Reject(time.Now().UTC()); err != nil {
			return err
		}
		if err = tx.Requests().Update(loaded); err != nil {
			return err
		}
		request = loaded
		return nil
	})
	if err != nil {
		return domain.JoinRequest{}, err
	}

	s.log.Info("join request rejected",
		slog.String("group_id", groupID),
		slog.String("request_id", requestID),
		slog.String("approver_id", approverID))
	return request, nil
}

// loadScopedRequest resolves a request inside its group and checks the
// caller may manage it. A request id from another group is reported as
// not found, never acted on.
func (s *GroupService) loadScopedRequest(tx contract.Tx, groupID, requestID, approverID string) (domain.JoinRequest, error) {
	group, err := tx.Groups().Get(groupID)
	if err != nil {
		return domain.JoinRequest{}, err
	}

	request, err := tx.Requests().Get(requestID)
	if err != nil {
		return domain.JoinRequest{}, err
	}
	if request.GroupID != group.ID {
		return domain.JoinRequest{}, errors.ErrRequestNotFound
	}

	approver, err := membershipOf(tx, groupID, approverID)
	if err != nil {
		return domain.JoinRequest{}, err
	}
	if !policy.CanManageGroup(approver) {
		return domain.JoinRequest{}, errors.ErrNotAdmin
	}
	return request, nil
}

// AddMemberToPrivateGroup lets an admin add a user to a private group
// directly, without the request workflow.
func (s *GroupService) AddMemberToPrivateGroup(ctx context.Context, groupID, actorID, targetID string) (domain.Membership, error) {
	if _, err := s.users.UserByID(targetID); err != nil {
		return domain.Membership{}, err
	}

	var membership domain.Membership
	err := s.uow.ReadWrite(ctx, func(tx contract.Tx) error {
		group, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}
		if group.Type != domain.GroupPrivate {
			return errors.ErrGroupNotPrivate
		}

		actor, err := membershipOf(tx, groupID, actorID)
		if err != nil {
			return err
		}
		if !policy.CanManageGroup(actor) {
			return errors.ErrNotAdmin
		}

		membership = domain.NewMembership(groupID, targetID, domain.RoleMember, time.Now().UTC())
		return tx.Members().Put(membership)
	})
	if err != nil {
		return domain.Membership{}, err
	}

	s.log.Info("member added",
		slog.String("group_id", groupID),
		slog.String("user_id", targetID),
		slog.String("actor_id", actorID))
	return membership, nil
}

// UpdateMemberRole sets the target's role. Admins may demote anyone,
// themselves included; a group left without admins is accepted.
func (s *GroupService) UpdateMemberRole(ctx context.Context, groupID, actorID, targetID string, role domain.Role) (domain.Membership, error) {
	if !role.Valid() {
		return domain.Membership{}, fmt.Errorf("%w: got %q", errors.ErrInvalidRole, role)
	}

	var membership domain.Membership
	err := s.uow.ReadWrite(ctx, func(tx contract.Tx) error {
		if _, err := tx.Groups().Get(groupID); err != nil {
			return err
		}

		actor, err := membershipOf(tx, groupID, actorID)
		if err != nil {
			return err
		}
		if !policy.CanManageGroup(actor) {
			return errors.ErrNotAdmin
		}

		membership, err = tx.Members().Get(groupID, targetID)
		if err != nil {
			return err
		}
		membership.Role = role
		return tx.Members().Update(membership)
	})
	if err != nil {
		return domain.Membership{}, err
	}

	s.log.Info("member role updated",
		slog.String("group_id", groupID),
		slog.String("user_id", targetID),
		slog.String("role", string(role)))
	return membership, nil
}

// RemoveMember deletes the target's membership row. Anyone may remove
// themselves; removing someone else is an admin action. There is no
// cascade: past requests stay as history.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, actorID, targetID string) error {
	err := s.uow.ReadWrite(ctx, func(tx contract.Tx) error {
		if _, err := tx.Groups().Get(groupID); err != nil {
			return err
		}

		actor, err := membershipOf(tx, groupID, actorID)
		if err != nil {
			return err
		}
		if !policy.CanRemoveMember(actorID, targetID, actor) {
			return errors.ErrNotAdmin
		}

		return tx.Members().Delete(groupID, targetID)
	})
	if err != nil {
		return err
	}

	s.log.Info("member removed",
		slog.String("group_id", groupID),
		slog.String("user_id", targetID),
		slog.String("actor_id", actorID))
	return nil
}

// LeaveGroup removes the caller's own membership. The owner is refused:
// a group must not silently lose the account it belongs to.
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID string) (domain.Group, error) {
	var group domain.Group
	err := s.uow.ReadWrite(ctx, func(tx contract.Tx) error {
		loaded, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}

		// The owner guard comes before the membership lookup: an owner
		// whose membership row was removed by another admin must still
		// hear "cannot leave", not "not a member".
		if !policy.CanLeave(loaded, userID) {
			return errors.ErrOwnerCannotLeave
		}
		if _, err = tx.Members().Get(groupID, userID); err != nil {
			return err
		}

		if err = tx.Members().Delete(groupID, userID); err != nil {
			return err
		}
		group = loaded
		return nil
	})
	if err != nil {
		return domain.Group{}, err
	}

	s.log.Info("member left group",
		slog.String("group_id", groupID),
		slog.String("user_id", userID))
	return group, nil
}

// GroupMembers returns every membership of the group, ordered by user id.
func (s *GroupService) GroupMembers(ctx context.Context, groupID string) ([]domain.Membership, error) {
	var members []domain.Membership
	err := s.uow.ReadOnly(ctx, func(tx contract.Tx) error {
		if _, err := tx.Groups().Get(groupID); err != nil {
			return err
		}
		var err error
		members, err = tx.Members().ListByGroup(groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ListJoinRequests returns the group's requests, oldest first, visible
// to admins only. A status narrows the listing when provided.
func (s *GroupService) ListJoinRequests(ctx context.Context, groupID, actorID string, status *domain.RequestStatus) ([]domain.JoinRequest, error) {
	var requests []domain.JoinRequest
	err := s.uow.ReadOnly(ctx, func(tx contract.Tx) error {
		if _, err := tx.Groups().Get(groupID); err != nil {
			return err
		}

		actor, err := membershipOf(tx, groupID, actorID)
		if err != nil {
			return err
		}
		if !policy.CanManageGroup(actor) {
			return errors.ErrNotAdmin
		}

		requests, err = tx.Requests().ListByGroup(groupID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if status != nil {
		requests = lo.Filter(requests, func(r domain.JoinRequest, _ int) bool {
			return r.Status == *status
		})
	}
	return requests, nil
}

// ListGroups returns every group, for operator tooling.
func (s *GroupService) ListGroups(ctx context.Context) ([]domain.Group, error) {
	var groups []domain.Group
	err := s.uow.ReadOnly(ctx, func(tx contract.Tx) error {
		var err error
		groups, err = tx.Groups().List()
		return err
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// membershipOf loads a membership, mapping absence to nil so policy
// predicates can decide on it.
func membershipOf(tx contract.Tx, groupID, userID string) (*domain.Membership, error) {
	m, err := tx.Members().Get(groupID, userID)
	if errors.Is(err, errors.ErrMemberNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
