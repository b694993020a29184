package model

import "time"

// Item — серверная модель товара каталога.
// Поля Cover/PreviewVideo/DemoVideo/Gallery/Attachments хранят ссылки на ассеты;
// после успешного цикла relocate+persist все «наши» ссылки указывают внутрь
// каталога кода товара (/uploads/items/{code}/...).
type Item struct {
	ID     string `gorm:"primaryKey;type:uuid"`
	UserID int64  `gorm:"not null;index"` // ссылка на users.id

	// Связи
	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Name        string `gorm:"not null"`
	Description string
	PriceCents  int64 `gorm:"not null;default:0"`

	// Code — целочисленный ключ каталога ассетов товара. 0 = код ещё не выдан.
	Code int `gorm:"index"`

	Cover        string
	PreviewVideo string
	DemoVideo    string
	Gallery      []string `gorm:"serializer:json"`
	Attachments  []string `gorm:"serializer:json"`

	Version int64 `gorm:"not null;default:1"`
	Deleted bool  `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
