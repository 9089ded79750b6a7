package webpath

const (
	Api = "/api"

	ApiPlayers      = Api + "/players"
	ApiPlayer       = ApiPlayers + "/:id"
	ApiPlayerHidden = ApiPlayer + "/hidden"
	ApiRatings      = Api + "/ratings"
	ApiGlicko2      = ApiRatings + "/glicko2"
	ApiSessions     = Api + "/sessions"
	ApiSession      = ApiSessions + "/:id"
	ApiArchive      = ApiSession + "/archive"
	ApiRounds       = ApiSession + "/rounds"
	ApiMatch        = ApiRounds + "/:n/matches/:mid"
	ApiMatchScore   = ApiMatch + "/score"
	ApiMatchReopen  = ApiMatch + "/reopen"
	ApiMatchTeams   = ApiMatch + "/teams"
	ApiRecalculate  = Api + "/recalculate"
	ApiSettings     = Api + "/settings"
)

func Path() map[string]string {
	return map[string]string{
		"Players":      ApiPlayers,
		"Player":       ApiPlayer,
		"PlayerHidden": ApiPlayerHidden,
		"Ratings":      ApiRatings,
		"Glicko2":      ApiGlicko2,
		"Sessions":     ApiSessions,
		"Session":      ApiSession,
		"Archive":      ApiArchive,
		"Rounds":       ApiRounds,
		"MatchScore":   ApiMatchScore,
		"MatchReopen":  ApiMatchReopen,
		"MatchTeams":   ApiMatchTeams,
		"Recalculate":  ApiRecalculate,
		"Settings":     ApiSettings,
	}
}
