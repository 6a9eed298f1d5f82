package models

// GamePass is a marketplace listing as returned by the games API.
// JSON tags follow the upstream field names.
type GamePass struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	ProductID   int64  `json:"productId"`
	Price       int64  `json:"price"`
	SellerName  string `json:"sellerName"`
	SellerID    int64  `json:"sellerId"`
	IsOwned     bool   `json:"isOwned"`
}

type PlayerData struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

type GameInfo struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"icon_url"`
}
