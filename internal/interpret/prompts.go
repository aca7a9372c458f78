package interpret

import (
	"fmt"
	"sort"
	"strings"

	"sonalyze/internal/analysis"
	"sonalyze/internal/catalog"
	"sonalyze/internal/textutil"
)

const systemPrompt = `Tu es un expert acousticien pédagogue spécialisé dans le diagnostic sonore des logements.
Tu expliques les résultats de manière claire et accessible pour des particuliers non-experts.
Tu es rassurant mais honnête. Tu donnes des conseils pratiques et actionnables.
Tu réponds TOUJOURS en français.
Tu évites le jargon technique, ou tu l'expliques simplement quand c'est nécessaire.
Tu ne mets PAS d'emojis dans tes réponses.`

const plainTextFormat = "Format : Texte simple, pas de bullet points, pas de titres, pas d'emojis."

var ratingWords = map[catalog.Rating]string{
	catalog.RatingA: "Exceptionnel - Silence quasi-total",
	catalog.RatingB: "Très bon - Très calme",
	catalog.RatingC: "Bon - Calme",
	catalog.RatingD: "Moyen - Modéré",
	catalog.RatingE: "Insuffisant - Bruyant",
	catalog.RatingF: "Très insuffisant - Très bruyant",
	catalog.RatingG: "Critique - Dangereux",
}

// Housing describes the dwelling a diagnostic was run in. Empty fields are
// rendered with neutral placeholders.
type Housing struct {
	ClientName string
	Address    string
	Type       string
	Floor      string
	Room       string
	City       string
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func (h Housing) clientName() string { return orDefault(h.ClientName, "Client") }
func (h Housing) address() string    { return orDefault(h.Address, "Non précisée") }
func (h Housing) kind() string       { return orDefault(h.Type, "Appartement") }
func (h Housing) floor() string      { return orDefault(h.Floor, "Non précisé") }
func (h Housing) room() string       { return orDefault(h.Room, "Salon") }
func (h Housing) city() string       { return orDefault(h.City, "Non précisée") }

func formatMean(p analysis.PeriodStats, precision int) string {
	if p.Mean == nil {
		return "non mesuré"
	}
	return fmt.Sprintf("%.*f dB", precision, *p.Mean)
}

func scaleLines(scale catalog.Scale) string {
	var b strings.Builder
	steps := scale.Steps()
	for i, step := range steps {
		bound := fmt.Sprintf("≤%.0f dB", step.MaxDB)
		if i == len(steps)-1 && i > 0 {
			bound = fmt.Sprintf(">%.0f dB", steps[i-1].MaxDB)
		}
		fmt.Fprintf(&b, "- %s (%s) : %s\n", step.Rating, bound, ratingWords[step.Rating])
	}
	return strings.TrimRight(b.String(), "\n")
}

func (g *Generator) gradePrompt(summary *analysis.Summary, housing Housing) string {
	global := summary.Global
	day, night := summary.DayNight.Day, summary.DayNight.Night
	return fmt.Sprintf(`Voici les résultats d'un diagnostic de performance sonore (DPS) :

LOGEMENT :
- Type : %s
- Étage : %s
- Pièce analysée : %s
- Ville : %s

RÉSULTATS :
- Note globale : %s
- Niveau sonore moyen : %.1f dB
- Niveau minimum : %.1f dB
- Niveau maximum : %.1f dB
- Durée d'enregistrement : %.1f heures

JOUR vs NUIT :
- Moyenne jour (%dh-%dh) : %s
- Moyenne nuit (%dh-%dh) : %s

ÉCHELLE DPS :
%s

TÂCHE :
Rédige une interprétation de cette note en 2-3 paragraphes courts.
- Explique ce que signifie concrètement cette note pour l'habitant
- Compare aux seuils recommandés pour ce type de pièce
- Mentionne la différence jour/nuit si significative
- Sois rassurant mais honnête
- Ne mets PAS d'emojis

%s`,
		housing.kind(), housing.floor(), housing.room(), housing.city(),
		global.Rating, global.MeanDB, global.MinDB, global.MaxDB, global.DurationHours,
		g.dayStart, g.nightStart, formatMean(day, 1),
		g.nightStart, g.dayStart, formatMean(night, 1),
		scaleLines(g.catalog.Scale()),
		plainTextFormat)
}

// familiesByShare orders the present families by descending percentage,
// keeping enumeration order between equal shares.
func familiesByShare(dist analysis.FamilyDistribution) []analysis.FamilyStat {
	entries := dist.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Percentage > entries[j].Percentage
	})
	return entries
}

func listOrNone(values []string, limit int) string {
	if len(values) > limit {
		values = values[:limit]
	}
	if len(values) == 0 {
		return "Aucun"
	}
	return strings.Join(values, ", ")
}

func (g *Generator) soundsPrompt(summary *analysis.Summary) string {
	var sounds strings.Builder
	for _, s := range summary.Sounds.Top {
		fmt.Fprintf(&sounds, "- %s: %.1f%% du temps, %.3f confiance, famille: %s\n", s.Label, s.Percentage, s.AvgScore, s.Family)
	}
	var families strings.Builder
	for i, f := range familiesByShare(summary.Sounds.Families) {
		if i == 5 {
			break
		}
		fmt.Fprintf(&families, "- %s: %.1f%%\n", f.Family, f.Percentage)
	}
	cls := summary.Sounds.Classification
	return fmt.Sprintf(`Voici les sources sonores détectées lors d'un diagnostic acoustique sur %.0fh :

TOP SONS DÉTECTÉS :
%s
RÉPARTITION PAR FAMILLE :
%s
SONS NORMAUX IDENTIFIÉS : %s
SONS PROBLÉMATIQUES FRÉQUENTS : %s

TÂCHE :
Rédige une analyse des sources de bruit en 2-3 paragraphes.
- Identifie les sources principales de nuisance
- Distingue les bruits normaux (vie quotidienne) des bruits problématiques
- Mentionne si certains bruits sont ponctuels vs constants
- Donne des pistes sur l'origine probable (extérieur, voisinage, intérieur)
- Ne mets PAS d'emojis

%s`,
		summary.Global.DurationHours,
		sounds.String(), families.String(),
		listOrNone(cls.Normal, 5), listOrNone(cls.FrequentProblems, 5),
		plainTextFormat)
}

func (g *Generator) recommendationsPrompt(summary *analysis.Summary, housing Housing) string {
	issues := sharesOf(summary).mainIssues()
	issueText := "Modérés"
	if len(issues) > 0 {
		issueText = strings.Join(issues, ", ")
	}
	return fmt.Sprintf(`Contexte du diagnostic acoustique :

LOGEMENT :
- Type : %s
- Étage : %s
- Pièce : %s

RÉSULTATS :
- Note globale : %s
- Niveau moyen : %.0f dB
- Problèmes identifiés : %s

TÂCHE :
Génère des recommandations personnalisées au format JSON avec cette structure exacte :
{
  "fenetre": {
    "priorite": "haute/moyenne/basse",
    "points_positifs": "ce qui est bien actuellement (1-2 phrases)",
    "probleme": "description courte du problème si existant",
    "solutions": [
      {
        "nom": "nom solution",
        "description": "explication courte",
        "cout_min": 50,
        "cout_max": 100,
        "impact": "réduction dB estimée",
        "difficulte": "facile/moyen/difficile"
      }
    ]
  },
  "mur": { ... },
  "porte": { ... },
  "plafond": { ... },
  "sol": { ... },
  "aeration": { ... }
}

IMPORTANT :
- cout_min et cout_max sont des NOMBRES (pas de texte, pas de €)
- points_positifs doit toujours contenir quelque chose de positif
- Si note A-C : mettre plus de points positifs, moins de problèmes
- Si note D-E : équilibré
- Si note F-G : plus de problèmes, solutions prioritaires

Réponds UNIQUEMENT avec le JSON, sans texte avant/après.`,
		housing.kind(), housing.floor(), housing.room(),
		summary.Global.Rating, summary.Global.MeanDB, issueText)
}

func costSentence(costs CostRange, format string) string {
	if costs.Max <= 0 {
		return ""
	}
	return fmt.Sprintf(format, textutil.GroupThousands(costs.Min), textutil.GroupThousands(costs.Max))
}

func (g *Generator) emailPrompt(summary *analysis.Summary, housing Housing, costs CostRange, selected []string) string {
	var extra strings.Builder
	if line := costSentence(costs, "Estimation budgétaire pour l'ensemble des améliorations : entre %s € et %s €."); line != "" {
		extra.WriteString(line + "\n")
	}
	if len(selected) > 0 {
		extra.WriteString("Solutions retenues : " + strings.Join(selected, ", ") + ".\n")
	}
	return fmt.Sprintf(`Rédige un email de synthèse pour un client ayant reçu son diagnostic acoustique.

INFOS :
- Nom : %s
- Adresse : %s
- Note obtenue : %s
- Niveau moyen : %.0f dB
%s
L'email doit :
- Remercier pour la confiance
- Résumer la note en 1 phrase
- Mentionner 2-3 points positifs du logement
- Donner 2-3 conseils prioritaires
- Inclure la fourchette de coûts si disponible
- Proposer un accompagnement (optionnel)
- Être chaleureux et professionnel
- Ne PAS mettre d'emojis

Format : Email prêt à envoyer (avec Objet:, puis le corps).`,
		housing.clientName(), housing.address(), summary.Global.Rating, summary.Global.MeanDB,
		extra.String())
}
