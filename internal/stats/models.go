package stats

import "time"

const DayLayout = "2006-01-02"

// DailyImpression counts app opens per UTC day. Date is DayLayout formatted.
type DailyImpression struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Date        string    `gorm:"size:10;not null;uniqueIndex" json:"date"`
	Impressions int64     `gorm:"not null;default:0" json:"impressions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (DailyImpression) TableName() string { return "daily_impressions" }

type Growth struct {
	Total         int64   `json:"total"`
	CurrentMonth  int64   `json:"current_month"`
	PreviousMonth int64   `json:"previous_month"`
	Percentage    float64 `json:"growth_percentage"`
	Direction     string  `json:"growth_direction"`
}

type TrackResult struct {
	Date        string `json:"date"`
	Impressions int64  `json:"impressions_today"`
	IsNewDay    bool   `json:"is_new_day"`
}

type ImpressionSummary struct {
	Total int64             `json:"total_impressions"`
	Today int64             `json:"today_impressions"`
	Daily []DailyImpression `json:"daily_impressions"`
	Count int               `json:"count"`
}
