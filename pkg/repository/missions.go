package repository

import (
	"context"
	"time"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/domain"
)

// MissionRepository provides mission and milestone management.
type MissionRepository struct {
	*Repository[domain.Mission]
}

// NewMissionRepository creates a repository bound to the missions collection.
func NewMissionRepository(provider database.Provider) *MissionRepository {
	return &MissionRepository{Repository: New[domain.Mission](provider, domain.CollectionMissions)}
}

// FindByAccount returns all missions for an account.
func (r *MissionRepository) FindByAccount(ctx context.Context, accountID string) ([]*domain.Mission, error) {
	return r.FindByField(ctx, "account_id", accountID)
}

// FindActiveByAccount returns the account's missions still in progress.
func (r *MissionRepository) FindActiveByAccount(ctx context.Context, accountID string) ([]*domain.Mission, error) {
	return r.FindWhere(ctx,
		database.Where("account_id", database.OpEq, accountID),
		database.Where("status", database.OpEq, domain.MissionActive),
	)
}

// CompleteMilestone marks the milestone done, stamps its completion time and
// recomputes the mission's completed-milestone percentage. At 100% the mission
// flips to completed, otherwise it stays (or returns to) active.
// Returns NotFoundError when the mission or milestone does not exist.
func (r *MissionRepository) CompleteMilestone(ctx context.Context, missionID, milestoneID string) (*domain.Mission, error) {
	mission, err := r.FindByID(ctx, missionID)
	if err != nil {
		return nil, err
	}
	if mission == nil {
		return nil, &database.NotFoundError{Collection: r.collection, ID: missionID}
	}

	now := time.Now().UTC()
	found := false
	done := 0
	for i := range mission.Milestones {
		m := &mission.Milestones[i]
		if m.ID == milestoneID {
			found = true
			if !m.Completed {
				m.Completed = true
				m.CompletedAt = &now
			}
		}
		if m.Completed {
			done++
		}
	}
	if !found {
		return nil, &database.NotFoundError{Collection: r.collection, ID: missionID + "/" + milestoneID}
	}

	mission.Progress = float64(done) / float64(len(mission.Milestones)) * 100
	mission.UpdatedAt = now
	if mission.Progress == 100 {
		mission.Status = domain.MissionCompleted
	} else {
		mission.Status = domain.MissionActive
	}
	return r.Save(ctx, mission)
}
