package driver

import (
	"encoding/json"
	"net/http"

	"github.com/alorle/profile-cache/internal/audit"
	"github.com/alorle/profile-cache/internal/profile"
)

// errorResponse represents a JSON error response.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// geoResponse represents geo coordinates in JSON format.
type geoResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// addressResponse represents a profile address in JSON format.
type addressResponse struct {
	Street  string      `json:"street"`
	Suite   string      `json:"suite"`
	City    string      `json:"city"`
	Zipcode string      `json:"zipcode"`
	Geo     geoResponse `json:"geo"`
}

// companyResponse represents profile company info in JSON format.
type companyResponse struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catch_phrase"`
	BS          string `json:"bs"`
}

// profileResponse represents a profile in JSON format.
type profileResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Address  addressResponse `json:"address"`
	Phone    string          `json:"phone"`
	Website  string          `json:"website"`
	Company  companyResponse `json:"company"`
}

// auditRecordResponse represents a persisted audit record in JSON format.
type auditRecordResponse struct {
	ID         int64           `json:"id"`
	ExternalID int64           `json:"external_id"`
	Profile    profileResponse `json:"profile"`
}

// toProfileResponse converts a profile domain object to an API response.
func toProfileResponse(p profile.Profile) profileResponse {
	return profileResponse{
		ID:       p.ID,
		Name:     p.Name,
		Username: p.Username,
		Email:    p.Email,
		Address: addressResponse{
			Street:  p.Address.Street,
			Suite:   p.Address.Suite,
			City:    p.Address.City,
			Zipcode: p.Address.Zipcode,
			Geo: geoResponse{
				Lat: p.Address.Geo.Lat,
				Lng: p.Address.Geo.Lng,
			},
		},
		Phone:   p.Phone,
		Website: p.Website,
		Company: companyResponse{
			Name:        p.Company.Name,
			CatchPhrase: p.Company.CatchPhrase,
			BS:          p.Company.BS,
		},
	}
}

// toAuditRecordResponse converts an audit record to an API response.
func toAuditRecordResponse(rec audit.Record) auditRecordResponse {
	return auditRecordResponse{
		ID:         rec.ID,
		ExternalID: rec.ExternalID,
		Profile:    toProfileResponse(rec.Profile),
	}
}
