package db

import (
	"time"

	"gorm.io/datatypes"
)

// Статусы оплаты заказа, выставляются администратором вручную
const (
	PaymentNotPaid    = "not_paid"
	PaymentProcessing = "processing"
	PaymentPaid       = "paid"
)

// MaxProfilePhotos ограничивает количество фото в анкете
const MaxProfilePhotos = 3

type User struct {
	ID              uint  `gorm:"primaryKey"`
	TelegramID      int64 `gorm:"uniqueIndex;not null"`
	Username        string
	FirstName       string
	RulesAccepted   bool `gorm:"default:false"`
	RulesAcceptedAt *time.Time
	CreatedAt       time.Time
}

// Profile: анкета исполнителя, доступная для бронирования
type Profile struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"not null"`
	Age            *int
	Description    string  `gorm:"type:text"`
	AudioChatPrice float64 `gorm:"not null"`
	VideoChatPrice float64 `gorm:"not null"`
	PrivatePrice   *float64
	ChannelLink    string
	PhotoIDs       datatypes.JSONSlice[string]
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Games []ProfileGame `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
}

type Game struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

// ProfileGame связывает анкету с игрой (многие ко многим)
type ProfileGame struct {
	ID        uint `gorm:"primaryKey"`
	ProfileID uint `gorm:"not null;uniqueIndex:idx_profile_game"`
	GameID    uint `gorm:"not null;uniqueIndex:idx_profile_game"`

	Game *Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
}

type Order struct {
	ID          uint   `gorm:"primaryKey"`
	OrderNumber string `gorm:"uniqueIndex;not null"`

	UserID    uint `gorm:"not null;index"`
	ProfileID uint `gorm:"not null;index"`

	FormatType string `gorm:"not null"`
	GameID     *uint
	GameName   string

	Date              time.Time `gorm:"not null"`
	DurationHours     float64   `gorm:"not null"`
	ParticipantsCount int       `gorm:"not null;default:1"`

	BasePrice                   float64 `gorm:"not null"`
	AdditionalParticipantsPrice float64 `gorm:"default:0"`
	TotalPrice                  float64 `gorm:"not null"`

	PaymentStatus  string `gorm:"default:not_paid"`
	ConferenceLink string `gorm:"type:text"`

	ReminderSent        bool `gorm:"default:false"`
	NotificationEnabled bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time

	User          *User          `gorm:"foreignKey:UserID"`
	Profile       *Profile       `gorm:"foreignKey:ProfileID"`
	Game          *Game          `gorm:"foreignKey:GameID;constraint:OnDelete:SET NULL"`
	ReminderTasks []ReminderTask `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// ReminderTask: долговременная запись об отложенном действии по заказу
type ReminderTask struct {
	ID            uint      `gorm:"primaryKey"`
	OrderID       uint      `gorm:"not null;index"`
	TaskType      string    `gorm:"not null"`
	ScheduledTime time.Time `gorm:"not null;index"`
	JobID         string
	Executed      bool `gorm:"default:false"`
	ExecutedAt    *time.Time
	CreatedAt     time.Time
}

// OrderCounter: последовательность для номеров заказов
type OrderCounter struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null"`
}
