package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/google/uuid"
)

// Project is a construction project an inspector reports against.
type Project struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	ProjectNumber   string    `gorm:"type:varchar(100)" json:"projectNumber"`
	Location        string    `gorm:"type:varchar(255)" json:"location"`
	ClientName      string    `gorm:"type:varchar(255)" json:"clientName"`
	Engineer        string    `gorm:"type:varchar(255)" json:"engineer"`
	PrimeContractor string    `gorm:"type:varchar(255)" json:"primeContractor"`
	IsActive        bool      `gorm:"default:true" json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	Contractors []Contractor     `gorm:"foreignKey:ProjectID" json:"contractors,omitempty"`
	Equipment   []ProjectSetItem `gorm:"foreignKey:ProjectID" json:"equipment,omitempty"`
}

// TableName specifies the table name
func (Project) TableName() string {
	return "projects"
}

// BeforeCreate hook
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// Contractor is a contractor on a project's roster.
type Contractor struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProjectID     string     `gorm:"type:varchar(36);not null;index:idx_contractor_project" json:"projectId"`
	Name          string     `gorm:"type:varchar(255);not null" json:"name"`
	Company       string     `gorm:"type:varchar(255)" json:"company"`
	Trade         string     `gorm:"type:varchar(100)" json:"trade"`
	IsActive      bool       `gorm:"default:true" json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
}

// TableName specifies the table name
func (Contractor) TableName() string {
	return "contractors"
}

// BeforeCreate hook
func (c *Contractor) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// ProjectSetItem is an equipment roster line configured per project.
type ProjectSetItem struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProjectID   string    `gorm:"type:varchar(36);not null;index:idx_equipment_project" json:"projectId"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:varchar(500)" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name
func (ProjectSetItem) TableName() string {
	return "project_equipment"
}

// BeforeCreate hook
func (i *ProjectSetItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}
