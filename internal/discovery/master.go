package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"herald/internal/models"
)

// defaultMasterURL is the Steam Web API server directory endpoint.
const defaultMasterURL = "https://api.steampowered.com/IGameServersService/GetServerList/v1/"

// Master queries the Steam server directory for one application ID and
// filters the results by server name: a name must contain at least one of
// the region markers and none of the exclude keywords. Matching is
// case-insensitive.
type Master struct {
	// BaseURL overrides the directory endpoint; empty means the Steam
	// Web API.
	BaseURL string

	APIKey  string
	AppID   int
	Limit   int
	Regions []string
	Exclude []string

	client *http.Client
}

// NewMaster creates a directory provider with the given request timeout.
func NewMaster(apiKey string, appID, limit int, regions, exclude []string, timeout time.Duration) *Master {
	return &Master{
		APIKey:  apiKey,
		AppID:   appID,
		Limit:   limit,
		Regions: regions,
		Exclude: exclude,
		client:  &http.Client{Timeout: timeout},
	}
}

type masterResponse struct {
	Response struct {
		Servers []masterServer `json:"servers"`
	} `json:"response"`
}

type masterServer struct {
	Addr string `json:"addr"`
	Name string `json:"name"`
}

// Servers fetches the directory listing and returns the filtered server set.
func (m *Master) Servers(ctx context.Context) ([]models.ServerRef, error) {
	base := m.BaseURL
	if base == "" {
		base = defaultMasterURL
	}

	params := url.Values{}
	params.Set("key", m.APIKey)
	params.Set("filter", fmt.Sprintf(`\appid\%d`, m.AppID))
	params.Set("limit", strconv.Itoa(m.Limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query server directory: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server directory responded with status %d", resp.StatusCode)
	}

	var payload masterResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode server directory response: %w", err)
	}

	refs := make([]models.ServerRef, 0, len(payload.Response.Servers))
	for _, srv := range payload.Response.Servers {
		if !m.nameAllowed(srv.Name) {
			continue
		}

		host, portStr, err := net.SplitHostPort(srv.Addr)
		if err != nil {
			log.Debug().Str("addr", srv.Addr).Msg("Skipping directory entry with malformed address")
			continue
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			log.Debug().Str("addr", srv.Addr).Msg("Skipping directory entry with invalid port")
			continue
		}

		refs = append(refs, models.ServerRef{Address: host, Port: port})
	}

	return refs, nil
}

// nameAllowed applies the region allow list and the keyword deny list.
func (m *Master) nameAllowed(name string) bool {
	upper := strings.ToUpper(name)

	region := false
	for _, marker := range m.Regions {
		if strings.Contains(upper, strings.ToUpper(marker)) {
			region = true
			break
		}
	}
	if !region {
		return false
	}

	for _, keyword := range m.Exclude {
		if strings.Contains(upper, strings.ToUpper(keyword)) {
			return false
		}
	}

	return true
}
