package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"newsroom/internal/logging"
)

const playlistPageSize = 50

type channelsResponse struct {
	Items []struct {
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// ListVideos returns up to limit video ids uploaded to channelID, newest
// first. Paging stops after the configured page budget.
func (c *Client) ListVideos(ctx context.Context, channelID string, limit int) ([]string, error) {
	if c.apiKey == "" {
		return nil, errors.New("youtube api key is not configured")
	}
	if channelID == "" {
		return nil, errors.New("channel id is required")
	}
	if limit <= 0 {
		return nil, nil
	}

	uploads, err := c.uploadsPlaylist(ctx, channelID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, limit)
	pageToken := ""
	for page := 0; page < c.maxPages && len(ids) < limit; page++ {
		params := url.Values{}
		params.Set("part", "contentDetails")
		params.Set("playlistId", uploads)
		params.Set("maxResults", strconv.Itoa(min(playlistPageSize, limit-len(ids))))
		params.Set("key", c.apiKey)
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		body, err := c.get(ctx, c.dataBase+"/playlistItems?"+params.Encode(), nil, maxAPIResponseSize)
		if err != nil {
			return nil, fmt.Errorf("list playlist items: %w", err)
		}
		var resp playlistItemsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode playlist items: %w", err)
		}
		for _, item := range resp.Items {
			if id := item.ContentDetails.VideoID; id != "" && len(ids) < limit {
				ids = append(ids, id)
			}
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	c.logger.Debug("channel listed",
		logging.String("channel_id", channelID),
		logging.Int("videos", len(ids)),
	)
	return ids, nil
}

func (c *Client) uploadsPlaylist(ctx context.Context, channelID string) (string, error) {
	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", channelID)
	params.Set("key", c.apiKey)
	body, err := c.get(ctx, c.dataBase+"/channels?"+params.Encode(), nil, maxAPIResponseSize)
	if err != nil {
		return "", fmt.Errorf("lookup channel: %w", err)
	}
	var resp channelsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode channel: %w", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails.RelatedPlaylists.Uploads == "" {
		return "", fmt.Errorf("channel %s not found or has no uploads playlist", channelID)
	}
	return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}
