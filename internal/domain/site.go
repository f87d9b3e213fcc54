package domain

import "time"

// PsSite is a monitored URL. The scheduler sweep ingests every enabled
// site whose NextRunAt has passed, once per configured device type.
type PsSite struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id,string"`
	Url          string    `gorm:"index" json:"url" form:"url"`
	DeviceType   string    `json:"device_type" form:"device_type"`
	Interval     int       `json:"interval" form:"interval"` // seconds between ingestions
	Status       string    `gorm:"index" json:"status" form:"status"`
	LastRunAt    time.Time `json:"last_run_at" form:"last_run_at"`
	NextRunAt    time.Time `json:"next_run_at" form:"next_run_at"`
	LastResult   string    `json:"last_result" form:"last_result"`
	LastCategory string    `json:"last_category" form:"last_category"`
	Remark       string    `json:"remark" form:"remark"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName Specify table name
func (PsSite) TableName() string {
	return "ps_site"
}
