package trello

// Board is a Trello board as returned by the search and board endpoints.
// Destination boards are mutated by adding lists and cards; template boards
// are only ever read.
type Board struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	ShortURL string `json:"shortUrl"`
	Closed   bool   `json:"closed"`
}

// List belongs to exactly one board. Pos is a real-valued ordering key and is
// only meaningful for relative sorting within the board.
type List struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	IDBoard string  `json:"idBoard"`
	Pos     float64 `json:"pos"`
	Closed  bool    `json:"closed"`
}

// Label is a board-scoped tag. Labels on different boards are distinct
// objects even when their names match, which is why copying a card across
// boards needs name-based reconciliation.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Member is a Trello user attached to a board or card.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// Card belongs to exactly one list.
type Card struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Desc      string   `json:"desc"`
	Pos       float64  `json:"pos"`
	IDList    string   `json:"idList"`
	IDBoard   string   `json:"idBoard"`
	IDMembers []string `json:"idMembers"`
	Labels    []Label  `json:"labels"`
	Closed    bool     `json:"closed"`
}
