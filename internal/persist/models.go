package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"finboard/internal/dashboard"
)

type blueprintRecord struct {
	ID              string         `gorm:"type:text;primaryKey"`
	Name            string         `gorm:"type:text;not null"`
	Persona         string         `gorm:"type:text;not null"`
	Description     string         `gorm:"type:text"`
	LicenseTier     string         `gorm:"type:text;not null"`
	IsSystemDefault bool           `gorm:"not null;default:false"`
	AssignedUsers   int            `gorm:"not null;default:0"`
	Widgets         datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"type:timestamptz;not null"`
	ModifiedAt      time.Time      `gorm:"type:timestamptz;not null"`
}

func (blueprintRecord) TableName() string { return "blueprints" }

func toBlueprintRecord(bp dashboard.Blueprint) (blueprintRecord, error) {
	widgets, err := json.Marshal(bp.Widgets)
	if err != nil {
		return blueprintRecord{}, fmt.Errorf("encode widgets for %s: %w", bp.ID, err)
	}
	return blueprintRecord{
		ID:              bp.ID,
		Name:            bp.Name,
		Persona:         string(bp.Persona),
		Description:     bp.Description,
		LicenseTier:     string(bp.LicenseTier),
		IsSystemDefault: bp.IsSystemDefault,
		AssignedUsers:   bp.AssignedUsers,
		Widgets:         datatypes.JSON(widgets),
		CreatedAt:       bp.CreatedAt,
		ModifiedAt:      bp.ModifiedAt,
	}, nil
}

func (r blueprintRecord) toDomain() (dashboard.Blueprint, error) {
	var widgets []dashboard.PlacedWidget
	if len(r.Widgets) > 0 {
		if err := json.Unmarshal(r.Widgets, &widgets); err != nil {
			return dashboard.Blueprint{}, fmt.Errorf("decode widgets for %s: %w", r.ID, err)
		}
	}
	return dashboard.Blueprint{
		ID:              r.ID,
		Name:            r.Name,
		Persona:         dashboard.Persona(r.Persona),
		Description:     r.Description,
		LicenseTier:     dashboard.LicenseTier(r.LicenseTier),
		IsSystemDefault: r.IsSystemDefault,
		WidgetCount:     len(widgets),
		AssignedUsers:   r.AssignedUsers,
		Widgets:         widgets,
		CreatedAt:       r.CreatedAt,
		ModifiedAt:      r.ModifiedAt,
	}, nil
}

type assignmentRecord struct {
	ID          string    `gorm:"type:text;primaryKey"`
	BlueprintID string    `gorm:"type:text;not null"`
	TargetType  string    `gorm:"type:text;not null;uniqueIndex:idx_assignment_target,priority:1"`
	TargetID    string    `gorm:"type:text;not null;uniqueIndex:idx_assignment_target,priority:2"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (assignmentRecord) TableName() string { return "assignments" }

func toAssignmentRecord(a dashboard.Assignment) assignmentRecord {
	return assignmentRecord{
		ID:          a.ID,
		BlueprintID: a.BlueprintID,
		TargetType:  string(a.TargetType),
		TargetID:    a.TargetID,
	}
}

func (r assignmentRecord) toDomain() dashboard.Assignment {
	return dashboard.Assignment{
		ID:          r.ID,
		BlueprintID: r.BlueprintID,
		TargetType:  dashboard.TargetType(r.TargetType),
		TargetID:    r.TargetID,
	}
}
