package model

import "time"

// Project 租户记录，API Key 解析到的归属方.
// 所有文件记录和查询都以 Project.ID 为作用域.
type Project struct {
	ID     uint   `gorm:"primaryKey"          json:"id"`
	Name   string `gorm:"size:255"            json:"name"`
	APIKey string `gorm:"size:128;uniqueIndex" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
