package users

import (
	"strings"

	"staff-sync/core/record"
)

// NormalizeSource aligns ERP user records with the comparison rules:
// emails are lowercased, an empty structure defaults to L3 and the Saml
// authentication label becomes the Sso the API expects.
func NormalizeSource(records []record.Record) []record.Record {
	out := make([]record.Record, len(records))
	for i, rec := range records {
		r := rec.Clone()
		r["AdresseEmail"] = strings.ToLower(r.Key("AdresseEmail"))
		r["Manager"] = strings.ToLower(r.Key("Manager"))
		if r.Key("Structure") == "" {
			r["Structure"] = "L3"
		}
		if r.Key("Methode_SSO") == "Saml" {
			r["Methode_SSO"] = "Sso"
		}
		out[i] = r
	}
	return out
}

// NormalizeTarget aligns platform user records: emails are lowercased, an
// empty profile defaults to Standard and the Dutch role label maps back to
// its French counterpart.
func NormalizeTarget(records []record.Record) []record.Record {
	out := make([]record.Record, len(records))
	for i, rec := range records {
		r := rec.Clone()
		r["mail"] = strings.ToLower(r.Key("mail"))
		if r.Key("profile") == "" {
			r["profile"] = "Standard"
		}
		if r.Key("role") == "Gebruiker" {
			r["role"] = "Utilisateur"
		}
		out[i] = r
	}
	return out
}
