package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/models"
)

func TestFileServers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.json")
	data := `[{"address": "10.0.0.1", "port": 2302}, {"address": "play.example.com", "port": 2402}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	provider := &File{Path: path}
	servers, err := provider.Servers(context.Background())

	require.NoError(t, err)
	require.Len(t, servers, 2)
	assert.Equal(t, models.ServerRef{Address: "10.0.0.1", Port: 2302}, servers[0])
	assert.Equal(t, "play.example.com:2402", servers[1].Key())
}

func TestFileServersMissing(t *testing.T) {
	provider := &File{Path: filepath.Join(t.TempDir(), "absent.json")}
	_, err := provider.Servers(context.Background())
	assert.Error(t, err)
}

func TestMasterFiltersByName(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Contains(t, r.URL.Query().Get("filter"), "221100")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response": {"servers": [
			{"addr": "10.0.0.1:2302", "name": "EU - Alpha Base"},
			{"addr": "10.0.0.2:2302", "name": "eu winter event madness"},
			{"addr": "10.0.0.3:2302", "name": "SA - Southern Comfort"},
			{"addr": "10.0.0.4:2302", "name": "US East | Bravo"},
			{"addr": "malformed", "name": "EU - Broken"},
			{"addr": "10.0.0.5:0", "name": "EU - Bad Port"}
		]}}`))
	}))
	defer ts.Close()

	provider := NewMaster("secret", 221100, 500, []string{"EU", "US"}, []string{"EVENT", "WINTER"}, time.Second)
	provider.BaseURL = ts.URL

	servers, err := provider.Servers(context.Background())

	require.NoError(t, err)
	require.Len(t, servers, 2)
	assert.Equal(t, "10.0.0.1:2302", servers[0].Key())
	assert.Equal(t, "10.0.0.4:2302", servers[1].Key())
}

func TestMasterErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Forbidden", http.StatusForbidden)
	}))
	defer ts.Close()

	provider := NewMaster("bad", 221100, 500, []string{"EU"}, nil, time.Second)
	provider.BaseURL = ts.URL

	_, err := provider.Servers(context.Background())
	assert.Error(t, err)
}
