package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

// Client is the upstream marketplace boundary. Every call can fail with
// ErrRateLimited (HTTP 429); callers decide whether to retry.
type Client interface {
	ResolveUniverse(ctx context.Context, gameID int64) (int64, error)
	FetchGamePasses(ctx context.Context, universeID int64) ([]models.GamePass, error)
	SearchPlayers(ctx context.Context, keyword string) ([]models.PlayerData, error)
	PlayerGames(ctx context.Context, playerID int64) ([]models.GameInfo, error)
	CurrencyBalance(ctx context.Context, userID int64) (int64, error)
}

type HTTPClient struct {
	http      *http.Client
	userAgent string

	apisURL       string
	gamesURL      string
	usersURL      string
	thumbnailsURL string
	economyURL    string
}

func NewHTTPClient(userAgent string) *HTTPClient {
	return &HTTPClient{
		http:          &http.Client{Timeout: 15 * time.Second},
		userAgent:     userAgent,
		apisURL:       "https://apis.roblox.com",
		gamesURL:      "https://games.roblox.com",
		usersURL:      "https://users.roblox.com",
		thumbnailsURL: "https://thumbnails.roblox.com",
		economyURL:    "https://economy.roblox.com",
	}
}

func (c *HTTPClient) ResolveUniverse(ctx context.Context, gameID int64) (int64, error) {
	var resp struct {
		UniverseID int64 `json:"universeId"`
	}
	url := fmt.Sprintf("%s/universes/v1/places/%d/universe", c.apisURL, gameID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return 0, err
	}
	return resp.UniverseID, nil
}

func (c *HTTPClient) FetchGamePasses(ctx context.Context, universeID int64) ([]models.GamePass, error) {
	var resp struct {
		Data []models.GamePass `json:"data"`
	}
	url := fmt.Sprintf("%s/v1/games/%d/game-passes?limit=100&sortOrder=1", c.gamesURL, universeID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *HTTPClient) SearchPlayers(ctx context.Context, keyword string) ([]models.PlayerData, error) {
	var resp struct {
		Data []struct {
			ID          int64  `json:"id"`
			Name        string `json:"name"`
			DisplayName string `json:"displayName"`
		} `json:"data"`
	}
	url := fmt.Sprintf("%s/v1/users/search?keyword=%s&limit=10", c.usersURL, keyword)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	batch := make([]thumbnailRequest, 0, len(resp.Data))
	for _, user := range resp.Data {
		batch = append(batch, avatarThumbnailRequest(user.ID))
	}
	thumbs, err := c.fetchThumbnails(ctx, batch)
	if err != nil {
		return nil, err
	}

	players := make([]models.PlayerData, 0, len(resp.Data))
	for i, user := range resp.Data {
		var avatarURL string
		if i < len(thumbs) {
			avatarURL = thumbs[i].ImageURL
		}
		players = append(players, models.PlayerData{
			UserID:      user.ID,
			Name:        user.Name,
			DisplayName: user.DisplayName,
			AvatarURL:   avatarURL,
		})
	}
	return players, nil
}

func (c *HTTPClient) PlayerGames(ctx context.Context, playerID int64) ([]models.GameInfo, error) {
	var resp struct {
		Data []struct {
			Name      string `json:"name"`
			RootPlace struct {
				ID int64 `json:"id"`
			} `json:"rootPlace"`
		} `json:"data"`
	}
	url := fmt.Sprintf("%s/v2/users/%d/games", c.gamesURL, playerID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	batch := make([]thumbnailRequest, 0, len(resp.Data))
	for _, game := range resp.Data {
		batch = append(batch, gameThumbnailRequest(game.RootPlace.ID))
	}
	thumbs, err := c.fetchThumbnails(ctx, batch)
	if err != nil {
		return nil, err
	}

	games := make([]models.GameInfo, 0, len(resp.Data))
	for i, game := range resp.Data {
		var iconURL string
		if i < len(thumbs) {
			iconURL = thumbs[i].ImageURL
		}
		games = append(games, models.GameInfo{
			ID:      game.RootPlace.ID,
			Name:    game.Name,
			IconURL: iconURL,
		})
	}
	return games, nil
}

func (c *HTTPClient) CurrencyBalance(ctx context.Context, userID int64) (int64, error) {
	var resp struct {
		Robux int64 `json:"robux"`
	}
	url := fmt.Sprintf("%s/v1/users/%d/currency", c.economyURL, userID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return 0, err
	}
	return resp.Robux, nil
}

type thumbnailRequest struct {
	RequestID string `json:"requestId"`
	Format    string `json:"format"`
	Size      string `json:"size"`
	TargetID  int64  `json:"targetId"`
	Type      string `json:"type"`
}

type thumbnailData struct {
	TargetID int64  `json:"targetId"`
	ImageURL string `json:"imageUrl"`
}

func avatarThumbnailRequest(userID int64) thumbnailRequest {
	return thumbnailRequest{
		RequestID: fmt.Sprintf("%d:undefined:AvatarHeadshot:150x150:webp:regular", userID),
		Format:    "webp",
		Size:      "150x150",
		TargetID:  userID,
		Type:      "AvatarHeadshot",
	}
}

func gameThumbnailRequest(placeID int64) thumbnailRequest {
	return thumbnailRequest{
		RequestID: fmt.Sprintf("%d::GameThumbnail:768x432:webp:regular", placeID),
		Format:    "webp",
		Size:      "768x432",
		TargetID:  placeID,
		Type:      "GameThumbnail",
	}
}

func (c *HTTPClient) fetchThumbnails(ctx context.Context, batch []thumbnailRequest) ([]thumbnailData, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal thumbnail batch: %v", pkgerrors.ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.thumbnailsURL+"/v1/batch", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: thumbnails batch: %v", pkgerrors.ErrUpstream, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: thumbnails batch", pkgerrors.ErrRateLimited)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: thumbnails batch returned %d", pkgerrors.ErrUpstream, res.StatusCode)
	}

	var resp struct {
		Data []thumbnailData `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: decode thumbnails batch: %v", pkgerrors.ErrUpstream, err)
	}
	return resp.Data, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", pkgerrors.ErrUpstream, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", pkgerrors.ErrUpstream, url, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		slog.Warn("rate limited by roblox api", "url", url)
		return fmt.Errorf("%w: %s", pkgerrors.ErrRateLimited, url)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", pkgerrors.ErrUpstream, url, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", pkgerrors.ErrUpstream, url, err)
	}
	return nil
}
