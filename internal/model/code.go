package model

import "time"

// Code — запись реестра кодов товаров (free-list).
// Строка создаётся при первой выдаче кода и никогда физически не удаляется:
// при освобождении флаг Assigned сбрасывается, и код становится доступен
// для повторной выдачи раньше, чем будет выпущен новый.
type Code struct {
	Code     int     `gorm:"primaryKey"`
	Assigned bool    `gorm:"not null;default:false;index"`
	ItemID   *string `gorm:"type:uuid"` // владелец кода; NULL когда код свободен

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
