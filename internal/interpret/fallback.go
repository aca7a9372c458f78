package interpret

import (
	"fmt"

	"sonalyze/internal/analysis"
	"sonalyze/internal/catalog"
)

func comfortWord(r catalog.Rating) string {
	switch {
	case isGood(r):
		return "correct"
	case r == catalog.RatingD:
		return "moyen"
	default:
		return "insuffisant"
	}
}

func durationPhrase(hours float64) string {
	if hours < 1 {
		return "moins d'une heure"
	}
	return fmt.Sprintf("%.0f heures", hours)
}

func dayNightSentence(dn analysis.DayNight) string {
	day, night := dn.Day, dn.Night
	switch {
	case day.Mean != nil && night.Mean != nil:
		return fmt.Sprintf("La différence entre le jour (%.0f dB) et la nuit (%.0f dB) montre une variation normale liée aux activités extérieures.", *day.Mean, *night.Mean)
	case day.Mean != nil:
		return fmt.Sprintf("Les mesures couvrent uniquement la journée, avec un niveau moyen de %.0f dB ; la nuit n'a pas été enregistrée.", *day.Mean)
	case night.Mean != nil:
		return fmt.Sprintf("Les mesures couvrent uniquement la nuit, avec un niveau moyen de %.0f dB ; la journée n'a pas été enregistrée.", *night.Mean)
	default:
		return "Aucune mesure ne permet de comparer le jour et la nuit."
	}
}

func defaultGradeText(summary *analysis.Summary) string {
	g := summary.Global
	return fmt.Sprintf(`Votre logement obtient la note %s avec un niveau sonore moyen de %.0f dB. Cette note correspond à un confort acoustique %s.

%s

Pour plus de détails sur les sources de bruit et les recommandations, consultez les sections suivantes du rapport.`,
		g.Rating, g.MeanDB, comfortWord(g.Rating), dayNightSentence(summary.DayNight))
}

func defaultSoundsText(summary *analysis.Summary) string {
	main := "circulation"
	if len(summary.Sounds.Top) > 0 {
		main = summary.Sounds.Top[0].Label
	}
	return fmt.Sprintf(`L'analyse sur %s révèle que la source sonore principale est "%s". Les bruits détectés proviennent majoritairement de l'environnement extérieur.

Les sons normaux du quotidien (voix, électroménager) représentent une part acceptable des nuisances. En revanche, certains bruits extérieurs méritent une attention particulière.

Consultez les graphiques ci-dessous pour une vue détaillée par heure et par type de bruit.`,
		durationPhrase(summary.Global.DurationHours), main)
}

func defaultEmailText(summary *analysis.Summary, costs CostRange) string {
	g := summary.Global
	costLine := costSentence(costs, "\nL'estimation budgétaire pour améliorer votre confort acoustique se situe entre %s € et %s €.\n")
	return fmt.Sprintf(`Objet : Votre diagnostic de performance sonore - Note %s

Bonjour,

Merci d'avoir fait confiance à Sonalyze pour votre diagnostic acoustique.

Votre logement obtient la note %s avec un niveau sonore moyen de %.0f dB. Cette analyse sur %s nous permet de vous proposer des recommandations adaptées à votre situation.

Points positifs identifiés :
- La structure générale du logement offre une base correcte pour l'isolation
- Les variations jour/nuit restent dans des plages gérables
- Des solutions simples et abordables peuvent améliorer significativement votre confort
%s
Nous vous invitons à consulter le rapport complet ci-joint pour découvrir nos recommandations personnalisées.

N'hésitez pas à nous contacter pour toute question ou pour être mis en relation avec des artisans qualifiés.

Cordialement,
L'équipe Sonalyze`,
		g.Rating, g.Rating, g.MeanDB, durationPhrase(g.DurationHours), costLine)
}
