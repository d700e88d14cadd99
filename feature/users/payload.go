package users

import (
	"time"

	"staff-sync/core/record"
)

// dateSentinel marks an unlimited validity in the ERP. It must never
// reach the API.
const dateSentinel = "2099-12-31"

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// BuildPayload shapes one ERP user row into the API upsert payload. The
// company code is replaced by its platform identifier and the manager
// email is expected to be resolved by the caller. In sandbox the
// authentication mode is forced to Integrated, real SSO providers are not
// wired there.
func BuildPayload(user record.Record, companyID string, sandbox bool) record.Record {
	authMode := user["Methode_SSO"]
	if sandbox {
		authMode = "Integrated"
	}

	payload := record.Record{
		"mail":                        user["AdresseEmail"],
		"firstname":                   user["Prenom"],
		"lastname":                    user["Nom"],
		"company":                     companyID,
		"role":                        user["Role"],
		"profile":                     user["Profil"],
		"managerMail":                 user["Manager"],
		"defaultCostCenter":           user["Centre_Cout"],
		"canCreateVehicle":            user["Creation_Vehicule"],
		"personnalCarHaveToBeApproved": record.ToBool(user["Appro_Veh_Adm"]),
		"removeHomeWorkDistance":      record.ToBool(user["Deduction_Distance_TravDom"]),
		"culture":                     user["langue"],
		"currencyIsoCode":             user["Devise"],
		"jobTitle":                    user["Fonction"],
		"employeeNumber":              user["Matricule"],
		"structure":                   user["Structure"],
		"ssoLogin":                    user["Champs_Liaison_SSO"],
		"gotProPayment":               record.ToBool(user["Moyen_Paiement_Prof"]),
		"accountingAuxiliaryAccount":  user["Compte_Auxiliaire_Agresso"],
		"accountingAuxiliaryNotReimbursableAccount": user["Compte_Auxiliaire2"],
		"canRaiseLimits":        record.ToBool(user["Droit_Relever_Plafond"]),
		"authMode":              authMode,
		"canDefineHisAnalytics": user["Update_Champs_Perso"],
	}

	if user.HasField("Date_Entree") {
		payload["entryDate"] = NormalizeDate(user["Date_Entree"])
	}
	if user.HasField("Date_Sortie") {
		payload["exitDate"] = NormalizeDate(user["Date_Sortie"])
	}

	return payload
}

// NormalizeDate converts an ERP date value into the API's timestamp
// format. Empty values and the unlimited sentinel come back as nil.
func NormalizeDate(value any) any {
	s := record.Canonical(value)
	if s == "" {
		return nil
	}

	if t, ok := value.(time.Time); ok {
		return formatDate(t)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, record.ToString(value)); err == nil {
			return formatDate(t)
		}
	}
	return nil
}

func formatDate(t time.Time) any {
	if t.Format("2006-01-02") == dateSentinel {
		return nil
	}
	return t.Format("2006-01-02") + "T00:00:00Z"
}
