package host

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/parleychat/parley/internal/errors"
)

// Release is the latest published version as served by the update URL.
type Release struct {
	Version string `json:"version"`
	URL     string `json:"url"`
}

// FetchRelease reads the release document at endpoint.
func FetchRelease(ctx context.Context, client *http.Client, endpoint string) (Release, error) {
	const op = errors.Op("host.CheckUpdate")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Release{}, errors.E(op, errors.KindInvalidArgument, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return Release{}, errors.E(op, errors.KindNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Release{}, errors.E(op, errors.KindNetwork, fmt.Sprintf("GET %s: %s", endpoint, resp.Status))
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Release{}, errors.E(op, errors.KindRemote, err)
	}
	return rel, nil
}

// Newer reports whether latest is a higher semantic version than current.
// Unparseable versions, such as development builds, never compare newer.
func Newer(current, latest string) bool {
	c, l := canonical(current), canonical(latest)
	if !semver.IsValid(c) || !semver.IsValid(l) {
		return false
	}
	return semver.Compare(l, c) > 0
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
