package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// GormFactoryRepository implements factory.FactoryRepository using GORM.
// A factory row and its employee rows are always written together.
type GormFactoryRepository struct {
	db *gorm.DB
}

// NewGormFactoryRepository creates a new GORM factory repository
func NewGormFactoryRepository(db *gorm.DB) *GormFactoryRepository {
	return &GormFactoryRepository{db: db}
}

// Save upserts the factory and replaces its employee rows
func (r *GormFactoryRepository) Save(ctx context.Context, f *factory.Factory) error {
	model, err := factoryToModel(f)
	if err != nil {
		return fmt.Errorf("failed to convert factory to model: %w", err)
	}

	return Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error; err != nil {
			return fmt.Errorf("failed to save factory %s: %w", f.ID(), err)
		}
		if err := tx.Where("factory_id = ?", f.ID()).Delete(&EmployeeModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear employees of factory %s: %w", f.ID(), err)
		}

		employees := f.Employees()
		if len(employees) == 0 {
			return nil
		}
		rows := make([]EmployeeModel, 0, len(employees))
		for _, e := range employees {
			rows = append(rows, EmployeeModel{
				ID:        e.ID(),
				FactoryID: f.ID(),
				Name:      e.Name(),
				Wage:      e.Wage(),
				HiredAt:   e.HiredAt(),
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save employees of factory %s: %w", f.ID(), err)
		}
		return nil
	})
}

// Delete removes a factory and its employees
func (r *GormFactoryRepository) Delete(ctx context.Context, id string) error {
	return Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("factory_id = ?", id).Delete(&EmployeeModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete employees: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&FactoryModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete factory: %w", err)
		}
		return nil
	})
}

// FindAll loads every factory with its employees
func (r *GormFactoryRepository) FindAll(ctx context.Context) ([]*factory.Factory, error) {
	db := Conn(ctx, r.db)

	var models []FactoryModel
	if err := db.Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load factories: %w", err)
	}

	var employeeRows []EmployeeModel
	if err := db.Order("hired_at, id").Find(&employeeRows).Error; err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	employees := make(map[string][]factory.Employee)
	for _, e := range employeeRows {
		employees[e.FactoryID] = append(employees[e.FactoryID], factory.ReconstructEmployee(e.ID, e.Name, e.Wage, e.HiredAt))
	}

	factories := make([]*factory.Factory, 0, len(models))
	for i := range models {
		f, err := modelToFactory(&models[i], employees[models[i].ID])
		if err != nil {
			return nil, fmt.Errorf("failed to convert factory %s: %w", models[i].ID, err)
		}
		factories = append(factories, f)
	}
	return factories, nil
}

func factoryToModel(f *factory.Factory) (*FactoryModel, error) {
	model := &FactoryModel{
		ID:        f.ID(),
		RegionRef: f.RegionRef(),
		Type:      string(f.Type()),
		Price:     f.Price(),
		Level:     f.Level(),
		Suspended: f.IsSuspended(),
		CreatedAt: f.CreatedAt(),
	}

	if owner := f.Owner(); owner != nil {
		id := owner.String()
		model.OwnerID = &id
	}

	if task := f.Task(); task != nil {
		outputs, err := json.Marshal(task.Outputs())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal task outputs: %w", err)
		}
		recipeID, startedAt, duration := task.RecipeID(), task.StartedAt(), task.DurationSeconds()
		model.TaskRecipeID = &recipeID
		model.TaskStartedAt = &startedAt
		model.TaskDuration = &duration
		model.TaskOutputs = string(outputs)
	}

	if loc := f.FastTravel(); loc != nil {
		data, err := json.Marshal(loc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal fast-travel location: %w", err)
		}
		model.FastTravel = string(data)
	}

	if up := f.Upgrade(); up != nil {
		startedAt, duration, target := up.StartedAt(), up.DurationSeconds(), up.TargetLevel()
		model.UpgradeStartedAt = &startedAt
		model.UpgradeDuration = &duration
		model.UpgradeTargetLevel = &target
	}

	return model, nil
}

func modelToFactory(model *FactoryModel, employees []factory.Employee) (*factory.Factory, error) {
	factoryType, err := shared.ParseFactoryType(model.Type)
	if err != nil {
		return nil, err
	}

	snap := factory.Snapshot{
		ID:        model.ID,
		RegionRef: model.RegionRef,
		Type:      factoryType,
		Price:     model.Price,
		Level:     model.Level,
		Employees: employees,
		Suspended: model.Suspended,
		CreatedAt: model.CreatedAt,
	}

	if model.OwnerID != nil {
		owner, err := shared.NewPlayerID(*model.OwnerID)
		if err != nil {
			return nil, err
		}
		snap.Owner = &owner
	}

	if model.TaskRecipeID != nil && model.TaskStartedAt != nil && model.TaskDuration != nil {
		outputs := map[string]int{}
		if model.TaskOutputs != "" {
			if err := json.Unmarshal([]byte(model.TaskOutputs), &outputs); err != nil {
				return nil, fmt.Errorf("failed to unmarshal task outputs: %w", err)
			}
		}
		snap.Task = factory.ReconstructProductionTask(*model.TaskRecipeID, *model.TaskStartedAt, *model.TaskDuration, outputs)
	}

	if model.FastTravel != "" {
		var loc factory.Location
		if err := json.Unmarshal([]byte(model.FastTravel), &loc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fast-travel location: %w", err)
		}
		snap.FastTravel = &loc
	}

	if model.UpgradeStartedAt != nil && model.UpgradeDuration != nil && model.UpgradeTargetLevel != nil {
		snap.Upgrade = factory.ReconstructUpgradeTimer(*model.UpgradeStartedAt, *model.UpgradeDuration, *model.UpgradeTargetLevel)
	}

	return factory.Reconstruct(snap), nil
}
