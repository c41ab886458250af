package labelformat

import (
	"net/url"
	"strings"
)

// ConsultationPath is the public history page every QR deep-links to.
const ConsultationPath = "/consulta-historial"

// DomainParam is the query parameter carrying the vehicle identifier.
const DomainParam = "dominio"

// ConsultationURL builds the deep link encoded into a label's QR code.
// The vehicle identifier is canonicalized to uppercase and URL-encoded so
// the payload round-trips through standard query decoding.
func ConsultationURL(origin, vehicleID string) string {
	origin = strings.TrimSuffix(origin, "/")
	return origin + ConsultationPath + "?" + DomainParam + "=" + url.QueryEscape(strings.ToUpper(vehicleID))
}

// DecodeConsultationURL extracts the vehicle identifier from a
// consultation deep link. Used by tests and diagnostics to verify that
// encoded payloads round-trip.
func DecodeConsultationURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return u.Query().Get(DomainParam), nil
}
