package persistence

import (
	"time"
)

// FactoryModel represents the factories table.
// The running task and the upgrade timer are stored inline; nil columns mean none.
type FactoryModel struct {
	ID                 string    `gorm:"column:id;primaryKey"`
	RegionRef          string    `gorm:"column:region_ref;not null"`
	Type               string    `gorm:"column:type;not null"`
	OwnerID            *string   `gorm:"column:owner_id;index"`
	Price              float64   `gorm:"column:price;not null"`
	Level              int       `gorm:"column:level;not null;default:1"`
	TaskRecipeID       *string   `gorm:"column:task_recipe_id"`
	TaskStartedAt      *int64    `gorm:"column:task_started_at"`
	TaskDuration       *int      `gorm:"column:task_duration_seconds"`
	TaskOutputs        string    `gorm:"column:task_outputs;type:text"` // JSON map resource -> count
	FastTravel         string    `gorm:"column:fast_travel;type:text"`  // JSON location, empty when unset
	UpgradeStartedAt   *int64    `gorm:"column:upgrade_started_at"`
	UpgradeDuration    *int      `gorm:"column:upgrade_duration_seconds"`
	UpgradeTargetLevel *int      `gorm:"column:upgrade_target_level"`
	Suspended          bool      `gorm:"column:suspended;not null;default:false"`
	CreatedAt          time.Time `gorm:"column:created_at;not null"`
}

func (FactoryModel) TableName() string {
	return "factories"
}

// EmployeeModel represents the factory_employees table
type EmployeeModel struct {
	ID        string        `gorm:"column:id;primaryKey"`
	FactoryID string        `gorm:"column:factory_id;not null;index"`
	Factory   *FactoryModel `gorm:"foreignKey:FactoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Name      string        `gorm:"column:name;not null"`
	Wage      float64       `gorm:"column:wage;not null"`
	HiredAt   time.Time     `gorm:"column:hired_at;not null"`
}

func (EmployeeModel) TableName() string {
	return "factory_employees"
}

// InputStorageModel represents one resource row of the input_storage table
type InputStorageModel struct {
	FactoryID  string `gorm:"column:factory_id;primaryKey"`
	ResourceID string `gorm:"column:resource_id;primaryKey"`
	Amount     int    `gorm:"column:amount;not null"`
}

func (InputStorageModel) TableName() string {
	return "input_storage"
}

// OutputStorageModel represents one resource row of the output_storage table
type OutputStorageModel struct {
	FactoryID  string `gorm:"column:factory_id;primaryKey"`
	ResourceID string `gorm:"column:resource_id;primaryKey"`
	Amount     int    `gorm:"column:amount;not null"`
}

func (OutputStorageModel) TableName() string {
	return "output_storage"
}

// InvoiceModel represents the invoices table. Invoices are never deleted,
// so factory_id carries no foreign key.
type InvoiceModel struct {
	ID        string     `gorm:"column:id;primaryKey"`
	FactoryID string     `gorm:"column:factory_id;not null;index"`
	OwnerID   string     `gorm:"column:owner_id;not null;index"`
	Type      string     `gorm:"column:type;not null"`
	Amount    float64    `gorm:"column:amount;not null"`
	IssuedAt  time.Time  `gorm:"column:issued_at;not null"`
	DueAt     time.Time  `gorm:"column:due_at;not null"`
	Paid      bool       `gorm:"column:paid;not null;default:false;index"`
	PaidAt    *time.Time `gorm:"column:paid_at"`
}

func (InvoiceModel) TableName() string {
	return "invoices"
}

// BillingRunModel represents the billing_runs table: one row per invoice kind
type BillingRunModel struct {
	Kind    string    `gorm:"column:kind;primaryKey"`
	LastRun time.Time `gorm:"column:last_run;not null"`
}

func (BillingRunModel) TableName() string {
	return "billing_runs"
}

// ListingModel represents the listings table
type ListingModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	SellerID   string    `gorm:"column:seller_id;not null;index"`
	FactoryID  string    `gorm:"column:factory_id;not null"`
	ResourceID string    `gorm:"column:resource_id;not null"`
	Amount     int       `gorm:"column:amount;not null"`
	UnitPrice  float64   `gorm:"column:unit_price;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (ListingModel) TableName() string {
	return "listings"
}

// AccountModel represents the accounts table backing the built-in economy
type AccountModel struct {
	PlayerID  string    `gorm:"column:player_id;primaryKey"`
	Balance   float64   `gorm:"column:balance;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (AccountModel) TableName() string {
	return "accounts"
}

// AllModels lists every model for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&FactoryModel{},
		&EmployeeModel{},
		&InputStorageModel{},
		&OutputStorageModel{},
		&InvoiceModel{},
		&BillingRunModel{},
		&ListingModel{},
		&AccountModel{},
	}
}
