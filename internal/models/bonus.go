package models

type BonusTask string

const (
	TaskTelegram   BonusTask = "tg"
	TaskVK         BonusTask = "vk"
	TaskDiscord    BonusTask = "ds"
	TaskTrustPilot BonusTask = "review"
	TaskVKReview   BonusTask = "vk_reviews"
	TaskDSReview   BonusTask = "ds_reviews"
)

// Bonuses is the per-player bonus ledger, keyed by roblox name.
// ActivatedFor holds the last player whose purchase credited this record.
type Bonuses struct {
	RobloxName     string   `json:"roblox_name"`
	Bonus          int      `json:"bonus"`
	ActivatedFor   string   `json:"activated_for,omitempty"`
	CompletedTasks []string `json:"completed_tasks"`
}
