package models

import "github.com/travelpkg/backend/internal/domain/report"

// NoticeModel is the persistence model for notices
type NoticeModel struct {
	BaseModel
	Title       string `gorm:"type:varchar(200);not null"`
	Content     string `gorm:"type:text;not null;default:''"`
	IsImportant bool   `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (NoticeModel) TableName() string {
	return "notices"
}

// ToDomain converts the persistence model to a domain Notice
func (m *NoticeModel) ToDomain() *report.Notice {
	return &report.Notice{
		BaseEntity:  m.BaseModel.ToDomain(),
		Title:       m.Title,
		Content:     m.Content,
		IsImportant: m.IsImportant,
	}
}

// NoticeModelFromDomain creates a new persistence model from a domain Notice
func NoticeModelFromDomain(n *report.Notice) *NoticeModel {
	m := &NoticeModel{
		Title:       n.Title,
		Content:     n.Content,
		IsImportant: n.IsImportant,
	}
	m.FromDomainBaseEntity(n.BaseEntity)
	return m
}
