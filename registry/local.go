package registry

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/flopayments/recongen/models"
)

var sectors = []string{
	"Consulenza IT", "Servizi Legali", "Marketing", "Contabilità",
	"Ingegneria", "Architettura", "Formazione", "Logistica",
}

var serviceTypes = map[string][]string{
	"Consulenza IT":  {"Sviluppo software", "Manutenzione sistemi", "Consulenza tecnica"},
	"Servizi Legali": {"Consulenza legale", "Assistenza contrattuale", "Rappresentanza"},
	"Marketing":      {"Campagne pubblicitarie", "Social media management", "Branding"},
	"Contabilità":    {"Tenuta contabilità", "Consulenza fiscale", "Bilanci"},
	"Ingegneria":     {"Progettazione", "Collaudi", "Consulenza tecnica"},
	"Architettura":   {"Progettazione architettonica", "Direzione lavori", "Pratiche edilizie"},
	"Formazione":     {"Corsi di formazione", "Seminari", "Coaching"},
	"Logistica":      {"Trasporti", "Magazzinaggio", "Distribuzione"},
}

var nameStems = []string{
	"Rossi", "Bianchi", "Ferrari", "Colombo", "Esposito", "Romano",
	"Gallo", "Greco", "Conti", "Mancini", "Rizzo", "Moretti",
	"Aurora", "Meridia", "Tirrena", "Adriatica", "Lombarda", "Venezia",
}

var legalForms = []string{"SRL", "SPA", "SNC", "SAS", "S.R.L.S."}

func Sectors() []string { return sectors }

// ServiceTypesFor returns the service taxonomy for a sector. Unknown sectors
// fall back to a generic professional service.
func ServiceTypesFor(sector string) []string {
	if st, ok := serviceTypes[sector]; ok {
		return st
	}
	return []string{"Servizio professionale"}
}

// ClientName builds a client company name with sector-appropriate suffixes.
func ClientName(rng *rand.Rand, sector string) string {
	base := nameStems[rng.Intn(len(nameStems))] + " " + legalForms[rng.Intn(len(legalForms))]
	var suffixes []string
	switch sector {
	case "Consulenza IT", "Ingegneria":
		suffixes = []string{"Tech", "Systems", "Solutions", "Digital"}
	case "Servizi Legali", "Contabilità":
		suffixes = []string{"& Partners", "Associati", "Studio"}
	case "Marketing":
		suffixes = []string{"Media", "Creative", "Brand", "Communications"}
	default:
		suffixes = []string{"Group", "SPA", "SRL"}
	}
	if rng.Float64() < 0.3 {
		base += " " + suffixes[rng.Intn(len(suffixes))]
	}
	return base
}

// Local is a deterministic in-process registry. Same seed, same parties.
type Local struct {
	rng       *rand.Rand
	namespace uuid.UUID
}

func NewLocal(seed int64) *Local {
	return &Local{
		rng:       rand.New(rand.NewSource(seed)),
		namespace: uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("recongen-registry-%d", seed))),
	}
}

// SampleParties balances the pool across sectors: one party per sector on
// the first round, then least-populated sectors first.
func (l *Local) SampleParties(ctx context.Context, n int) ([]*models.Party, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(sectors))
	out := make([]*models.Party, 0, n)
	for i := 0; i < n; i++ {
		var sector string
		if i < len(sectors) {
			sector = sectors[i]
		} else {
			min := -1
			for _, s := range sectors {
				if min == -1 || counts[s] < min {
					min = counts[s]
				}
			}
			var candidates []string
			for _, s := range sectors {
				if counts[s] == min {
					candidates = append(candidates, s)
				}
			}
			sector = candidates[l.rng.Intn(len(candidates))]
		}
		counts[sector]++

		out = append(out, &models.Party{
			ID:          uuid.NewSHA1(l.namespace, []byte(fmt.Sprintf("party-%d", i))).String(),
			Name:        l.companyName(sector),
			VatID:       PartitaIVA(l.rng),
			BankAccount: IBAN(l.rng),
			Sector:      sector,
		})
	}
	return out, nil
}

func (l *Local) companyName(sector string) string {
	base := nameStems[l.rng.Intn(len(nameStems))] + " " + legalForms[l.rng.Intn(len(legalForms))]
	switch sector {
	case "Consulenza IT":
		if l.rng.Float64() < 0.4 {
			words := []string{"Tech", "Digital", "Systems", "Solutions", "Software"}
			base = stripLegalForm(base) + " " + words[l.rng.Intn(len(words))]
		}
	case "Servizi Legali":
		if l.rng.Float64() < 0.3 {
			base = "Studio Legale " + stripLegalForm(base)
		}
	case "Marketing":
		if l.rng.Float64() < 0.3 {
			words := []string{"Creative", "Media", "Brand", "Communications"}
			base += " " + words[l.rng.Intn(len(words))]
		}
	}
	return base
}

func stripLegalForm(name string) string {
	for _, form := range legalForms {
		name = strings.ReplaceAll(name, form, "")
	}
	return strings.TrimSpace(name)
}

// PartitaIVA generates an 11-digit Italian VAT number with a valid Luhn-style
// check digit (odd positions count once, even positions doubled with digit
// sum).
func PartitaIVA(rng *rand.Rand) string {
	digits := make([]int, 11)
	for i := 0; i < 10; i++ {
		digits[i] = rng.Intn(10)
	}
	sum := 0
	for i := 0; i < 10; i++ {
		d := digits[i]
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	digits[10] = (10 - sum%10) % 10
	var b strings.Builder
	for _, d := range digits {
		fmt.Fprintf(&b, "%d", d)
	}
	return b.String()
}

// IBAN generates an Italian IBAN (IT + check + CIN + ABI + CAB + account)
// with valid mod-97 check digits.
func IBAN(rng *rand.Rand) string {
	cin := string(rune('A' + rng.Intn(26)))
	bban := fmt.Sprintf("%s%05d%05d%012d", cin, rng.Intn(100000), rng.Intn(100000), rng.Int63n(1_000_000_000_000))
	check := 98 - mod97(bban+"IT00")
	return fmt.Sprintf("IT%02d%s", check, bban)
}

func mod97(s string) int {
	rem := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			rem = (rem*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			v := int(r-'A') + 10
			rem = (rem*100 + v) % 97
		}
	}
	return rem
}
