package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case RegisterResult:
		o.printRegisterResult(v)
	case PlayerState:
		o.printPlayerState(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case CatalogResult:
		o.printCatalog(v)
	case FriendsResult:
		o.printFriends(v)
	case FriendRequestsResult:
		o.printFriendRequests(v)
	case Suggestion:
		o.printSuggestion(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// RegisterResult response type (matches API)
type RegisterResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// PlayerState response type
type PlayerState struct {
	Name        string         `json:"name"`
	Score       int64          `json:"score"`
	Sps         int64          `json:"sps"`
	Upgrades    map[string]int `json:"upgrades"`
	LastUpdated time.Time      `json:"last_updated"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// Leaderboard response type
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// UpgradeSpec response type
type UpgradeSpec struct {
	ID             string  `json:"id"`
	BaseCost       int64   `json:"base_cost"`
	CostMultiplier float64 `json:"cost_multiplier"`
	PpcIncrease    int64   `json:"ppc_increase"`
	PpsIncrease    int64   `json:"pps_increase"`
	Level          int     `json:"level"`
	NextCost       int64   `json:"next_cost"`
}

// CatalogResult response type
type CatalogResult struct {
	Upgrades []UpgradeSpec `json:"upgrades"`
}

// Friend response type
type Friend struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// FriendsResult response type
type FriendsResult struct {
	Friends []Friend `json:"friends"`
}

// FriendRequest response type
type FriendRequest struct {
	From   string    `json:"from"`
	SentAt time.Time `json:"sent_at"`
}

// FriendRequestsResult response type
type FriendRequestsResult struct {
	Requests []FriendRequest `json:"requests"`
}

// Suggestion response type
type Suggestion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BaseCost    int64  `json:"base_cost"`
	PpsIncrease int64  `json:"pps_increase"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRegisterResult(r RegisterResult) {
	fmt.Printf("Registered: %s\n", r.Name)
	fmt.Printf("Token: %s\n", r.Token)
}

func (o *Output) printPlayerState(p PlayerState) {
	fmt.Printf("Player: %s\n", p.Name)
	fmt.Printf("Score: %d\n", p.Score)
	fmt.Printf("Score/sec: %d\n", p.Sps)
	if len(p.Upgrades) > 0 {
		fmt.Println("Upgrades:")
		for id, level := range p.Upgrades {
			fmt.Printf("  %s: level %d\n", id, level)
		}
	}
	fmt.Printf("Last updated: %s\n", p.LastUpdated.Format(time.RFC3339))
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Entries) == 0 {
		fmt.Println("Leaderboard is empty")
		return
	}
	for _, e := range l.Entries {
		fmt.Printf("%3d. %-20s %d\n", e.Rank, e.Name, e.Score)
	}
}

func (o *Output) printCatalog(c CatalogResult) {
	for _, u := range c.Upgrades {
		fmt.Printf("%s (level %d)\n", u.ID, u.Level)
		fmt.Printf("  next cost: %d\n", u.NextCost)
		if u.PpcIncrease > 0 {
			fmt.Printf("  +%d per click\n", u.PpcIncrease)
		}
		if u.PpsIncrease > 0 {
			fmt.Printf("  +%d per second\n", u.PpsIncrease)
		}
	}
}

func (o *Output) printFriends(f FriendsResult) {
	if len(f.Friends) == 0 {
		fmt.Println("No friends yet")
		return
	}
	for _, fr := range f.Friends {
		fmt.Printf("%-20s %d\n", fr.Name, fr.Score)
	}
}

func (o *Output) printFriendRequests(r FriendRequestsResult) {
	if len(r.Requests) == 0 {
		fmt.Println("No pending requests")
		return
	}
	for _, req := range r.Requests {
		fmt.Printf("%s (sent %s)\n", req.From, req.SentAt.Format(time.RFC3339))
	}
}

func (o *Output) printSuggestion(s Suggestion) {
	fmt.Printf("%s\n", s.Name)
	fmt.Printf("  %s\n", s.Description)
	fmt.Printf("  base cost: %d, +%d per second\n", s.BaseCost, s.PpsIncrease)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
