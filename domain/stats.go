package domain

import (
	"fmt"
	"strings"
)

type RequestEvent struct {
	Timestamp     int64
	SourceAddress string
}

type RankingEntry struct {
	Rank        int    `json:"rank"`
	Address     string `json:"address"`
	DisplayName string `json:"displayName"`
	Current     int    `json:"current"`
	Peak        int    `json:"peak"`
}

// Stats is a single sliding window observation.
// Ranking contains every address ever seen, ordered by descending peak.
type Stats struct {
	Current int
	Peak    int
	Ranking []RankingEntry
}

func (s Stats) GlobalLine() string {
	return fmt.Sprintf("Per second : %d (max=%d)", s.Current, s.Peak)
}

func (s Stats) RankingLines() []string {
	lines := make([]string, 0, len(s.Ranking))
	for _, entry := range s.Ranking {
		lines = append(lines, entry.Line())
	}
	return lines
}

func (s Stats) RankingText() string {
	return strings.Join(s.RankingLines(), "\n")
}

func (e RankingEntry) Line() string {
	return fmt.Sprintf("%d. %s : %d (max=%d)", e.Rank, e.DisplayName, e.Current, e.Peak)
}

type StatsView struct {
	GlobalLine  string         `json:"globalLine"`
	RankingText string         `json:"rankingText"`
	Current     int            `json:"current"`
	Peak        int            `json:"peak"`
	Ranking     []RankingEntry `json:"ranking"`
}

func (s Stats) View() StatsView {
	ranking := s.Ranking
	if ranking == nil {
		ranking = []RankingEntry{}
	}
	return StatsView{
		GlobalLine:  s.GlobalLine(),
		RankingText: s.RankingText(),
		Current:     s.Current,
		Peak:        s.Peak,
		Ranking:     ranking,
	}
}

type Response struct {
	StatusCode int
	Body       string
}
