package driven

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alorle/profile-cache/internal/port/driven"
	"github.com/alorle/profile-cache/internal/profile"
)

// ProfileHTTPFetcher implements the ProfileFetcher port using HTTP calls to
// the upstream user directory (GET {base}/users/{id}).
type ProfileHTTPFetcher struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewProfileHTTPFetcher creates a new HTTP fetcher for the user directory.
// baseURL should point to the directory root (e.g. https://jsonplaceholder.typicode.com).
func NewProfileHTTPFetcher(baseURL string, timeout time.Duration, logger *slog.Logger) *ProfileHTTPFetcher {
	return &ProfileHTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// coordinate decodes a latitude/longitude value that the upstream serves
// either as a JSON number or as a quoted string.
type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	*c = coordinate(f)
	return nil
}

// userDTO mirrors the upstream user payload. The id arrives as a JSON
// number but is kept as a string in the domain model.
type userDTO struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Address  struct {
		Street  string `json:"street"`
		Suite   string `json:"suite"`
		City    string `json:"city"`
		Zipcode string `json:"zipcode"`
		Geo     struct {
			Lat coordinate `json:"lat"`
			Lng coordinate `json:"lng"`
		} `json:"geo"`
	} `json:"address"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Company struct {
		Name        string `json:"name"`
		CatchPhrase string `json:"catchPhrase"`
		BS          string `json:"bs"`
	} `json:"company"`
}

func dtoToProfile(dto userDTO) profile.Profile {
	p := profile.Profile{
		ID:       dto.ID.String(),
		Name:     dto.Name,
		Username: dto.Username,
		Email:    dto.Email,
		Phone:    dto.Phone,
		Website:  dto.Website,
	}
	p.Address = profile.Address{
		Street:  dto.Address.Street,
		Suite:   dto.Address.Suite,
		City:    dto.Address.City,
		Zipcode: dto.Address.Zipcode,
		Geo: profile.Geo{
			Lat: float64(dto.Address.Geo.Lat),
			Lng: float64(dto.Address.Geo.Lng),
		},
	}
	p.Company = profile.Company{
		Name:        dto.Company.Name,
		CatchPhrase: dto.Company.CatchPhrase,
		BS:          dto.Company.BS,
	}
	return p
}

// Fetch retrieves the profile identified by id from the user directory.
// All failures are returned as *driven.UpstreamError.
func (f *ProfileHTTPFetcher) Fetch(ctx context.Context, id string) (profile.Profile, error) {
	reqURL := fmt.Sprintf("%s/users/%s", f.baseURL, url.PathEscape(id))

	f.logger.Debug("fetching profile from upstream", "id", id, "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return profile.Profile{}, &driven.UpstreamError{Message: fmt.Sprintf("create upstream request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Error("failed to reach upstream user directory", "id", id, "error", err)
		return profile.Profile{}, &driven.UpstreamError{Message: fmt.Sprintf("fetch user %s: %v", id, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		f.logger.Warn("upstream returned error status", "id", id, "status", resp.StatusCode)
		return profile.Profile{}, &driven.UpstreamError{
			Message: fmt.Sprintf("upstream returned %s for user %s: %s", resp.Status, id, strings.TrimSpace(string(body))),
		}
	}

	var dto userDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return profile.Profile{}, &driven.UpstreamError{Message: fmt.Sprintf("decode upstream response for user %s: %v", id, err)}
	}

	p := dtoToProfile(dto)
	f.logger.Info("fetched profile from upstream", "id", id, "username", p.Username)

	return p, nil
}
