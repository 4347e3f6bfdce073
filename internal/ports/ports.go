package ports

import "strings"

// Directory is the canonical list of serviced Turkish ports, used by the
// frontend combobox and by agencies when registering service areas. Demand
// ports stay free text, so matching always goes through NormalizeTR.
var Directory = []string{
	"İstanbul",
	"İzmir",
	"İzmit (Kocaeli)",
	"Mersin",
	"Aliağa",
	"Gemlik",
	"Bandırma",
	"Tekirdağ",
	"Ambarlı",
	"İskenderun",
	"Antalya",
	"Samsun",
	"Trabzon",
	"Zonguldak",
	"Çanakkale",
	"Karadeniz Ereğli",
	"Dikili",
	"Güllük",
	"Taşucu",
	"Botaş (Ceyhan)",
}

var trFold = strings.NewReplacer(
	"İ", "I", "ı", "i",
	"Ğ", "G", "ğ", "g",
	"Ş", "S", "ş", "s",
	"Ö", "O", "ö", "o",
	"Ü", "U", "ü", "u",
	"Ç", "C", "ç", "c",
)

// NormalizeTR folds the Turkish-specific letter pairs to their base characters
// and uppercases the result, so data entered with inconsistent accents or
// casing compares equal ("İZMİR" == "izmir").
func NormalizeTR(s string) string {
	return strings.ToUpper(trFold.Replace(s))
}

// IsEligible reports whether an agency with the given registered ports may see
// and bid on a demand for demandPort. An agency with zero registered ports is
// eligible for everything (fail-open, paired with an onboarding warning in the
// UI). Otherwise a registered port must be contained in the normalized demand
// port, tolerating phrasing differences like "İstanbul Liman" vs "İstanbul".
func IsEligible(agencyPorts []string, demandPort string) bool {
	if len(agencyPorts) == 0 {
		return true
	}
	normalized := NormalizeTR(demandPort)
	for _, p := range agencyPorts {
		if p == "" {
			continue
		}
		if strings.Contains(normalized, NormalizeTR(p)) {
			return true
		}
	}
	return false
}
