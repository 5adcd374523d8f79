// Package codec converts profiles to and from the JSON form stored in the
// audit store. The storage adapters never touch the domain schema directly;
// they hand payload bytes to a ProfileCodec.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alorle/profile-cache/internal/profile"
)

// ProfileCodec is a stateless encode/decode capability for profile payloads.
// Construct it once and inject it wherever storage conversion happens.
type ProfileCodec struct{}

// New creates a ProfileCodec.
func New() ProfileCodec {
	return ProfileCodec{}
}

// geoDTO is used for JSON serialization of geo coordinates.
type geoDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type addressDTO struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Geo     geoDTO `json:"geo"`
}

type companyDTO struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

// profileDTO is the stored JSON shape, field-compatible with the upstream
// user directory payload except that the id is always a string.
type profileDTO struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Address  addressDTO `json:"address"`
	Phone    string     `json:"phone"`
	Website  string     `json:"website"`
	Company  companyDTO `json:"company"`
}

func toDTO(p profile.Profile) profileDTO {
	return profileDTO{
		ID:       p.ID,
		Name:     p.Name,
		Username: p.Username,
		Email:    p.Email,
		Address: addressDTO{
			Street:  p.Address.Street,
			Suite:   p.Address.Suite,
			City:    p.Address.City,
			Zipcode: p.Address.Zipcode,
			Geo: geoDTO{
				Lat: p.Address.Geo.Lat,
				Lng: p.Address.Geo.Lng,
			},
		},
		Phone:   p.Phone,
		Website: p.Website,
		Company: companyDTO{
			Name:        p.Company.Name,
			CatchPhrase: p.Company.CatchPhrase,
			BS:          p.Company.BS,
		},
	}
}

func fromDTO(dto profileDTO) profile.Profile {
	return profile.Profile{
		ID:       dto.ID,
		Name:     dto.Name,
		Username: dto.Username,
		Email:    dto.Email,
		Address: profile.Address{
			Street:  dto.Address.Street,
			Suite:   dto.Address.Suite,
			City:    dto.Address.City,
			Zipcode: dto.Address.Zipcode,
			Geo: profile.Geo{
				Lat: dto.Address.Geo.Lat,
				Lng: dto.Address.Geo.Lng,
			},
		},
		Phone:   dto.Phone,
		Website: dto.Website,
		Company: profile.Company{
			Name:        dto.Company.Name,
			CatchPhrase: dto.Company.CatchPhrase,
			BS:          dto.Company.BS,
		},
	}
}

// Encode serializes a profile into its stored JSON form.
func (ProfileCodec) Encode(p profile.Profile) ([]byte, error) {
	data, err := json.Marshal(toDTO(p))
	if err != nil {
		return nil, fmt.Errorf("encode profile payload: %w", err)
	}
	return data, nil
}

// Decode parses a stored JSON payload back into a profile. Malformed input
// fails loudly: unknown fields, trailing data and type mismatches are all
// errors rather than a partially-populated profile.
func (ProfileCodec) Decode(data []byte) (profile.Profile, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var dto profileDTO
	if err := dec.Decode(&dto); err != nil {
		return profile.Profile{}, fmt.Errorf("decode profile payload: %w", err)
	}
	if dec.More() {
		return profile.Profile{}, errors.New("decode profile payload: trailing data")
	}

	return fromDTO(dto), nil
}
