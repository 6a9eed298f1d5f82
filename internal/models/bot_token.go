package models

// BotToken is a buyer-account credential. Token is stored without whitespace
// and must carry the Roblox warning prefix. A token with IsActive=false must
// never be selected for a purchase workflow.
type BotToken struct {
	ID         int64  `json:"id"`
	RobloxName string `json:"roblox_name"`
	Token      string `json:"-"`
	IsActive   bool   `json:"is_active"`
	IsSelected bool   `json:"is_selected"`
}
