package version

import (
	"encoding/json"
	"net/http"
)

var (
	GitRepo          string
	LatestReleaseTag string
	GitShortSha      string
)

type Response struct {
	Repo             string `json:"repo"`
	LatestReleaseTag string `json:"latest_release_tag"`
	GitShortSha      string `json:"git_short_sha"`
}

// Handler serves the build information stamped in at link time.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		jsonResp, err := json.Marshal(Response{
			Repo:             GitRepo,
			LatestReleaseTag: LatestReleaseTag,
			GitShortSha:      GitShortSha,
		})
		if err != nil {
			http.Error(w, "error marshal json for version response", http.StatusInternalServerError)
			return
		} // .if

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResp)
	})
}
