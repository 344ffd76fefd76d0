package common

import "gorm.io/gorm"

// ByClient 按客户（租户）ID 过滤
// 使用方法：db.Scopes(common.ByClient(clientID)).Find(&agents)
func ByClient(clientID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("client_id = ?", clientID)
	}
}

// ActiveOnly 仅查询启用状态的记录
// 使用方法：db.Scopes(common.ActiveOnly()).Find(&templates)
func ActiveOnly() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true)
	}
}
