// Package trello is a thin typed client for the parts of the Trello REST API
// this tool consumes: member identity, board search, and board/list/card
// CRUD. Transport, TLS and retries are owned by the underlying resty client.
package trello

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vk/boardcopy/internal/ctxlog"
	"resty.dev/v3"
)

const defaultBaseURL = "https://api.trello.com"

// searchBoardsLimit caps how many boards a single name search returns. The
// resolver treats anything past its own candidate cap as a bad query anyway.
const searchBoardsLimit = 20

// Client issues authenticated requests against the Trello REST API. It is
// safe for concurrent use; every request carries the key/token pair as query
// parameters, which is how Trello authenticates API calls.
type Client struct {
	key   string
	token string
	http  *resty.Client
}

// NewClient builds a Client for the given credentials.
func NewClient(key, token string) *Client {
	httpClient := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{key: key, token: token, http: httpClient}
}

// SetBaseURL points the client at a different API host. Used by tests to
// target an httptest server.
func (c *Client) SetBaseURL(baseURL string) {
	c.http.SetBaseURL(baseURL)
}

// Close releases the underlying transport resources.
func (c *Client) Close() error {
	return c.http.Close()
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":   c.key,
			"token": c.token,
		})
}

// apiError turns a non-2xx response into an error. Trello returns plain-text
// bodies for most failures, so the body goes into the message verbatim.
func apiError(op string, res *resty.Response) error {
	body := strings.TrimSpace(res.String())
	if body == "" {
		body = res.Status()
	}
	return fmt.Errorf("trello: %s: %s", op, body)
}

// Me fetches the member the token belongs to. It doubles as the
// authentication check: invalid credentials fail here before anything else
// talks to the API.
func (c *Client) Me(ctx context.Context) (*Member, error) {
	var member Member
	res, err := c.request(ctx).
		SetResult(&member).
		Get("/1/members/me")
	if err != nil {
		return nil, fmt.Errorf("trello: authenticate: %w", err)
	}
	if res.IsError() {
		return nil, apiError("authenticate", res)
	}
	ctxlog.FromContext(ctx).Debug("Authenticated against Trello.", "username", member.Username)
	return &member, nil
}

// searchResult mirrors the relevant slice of the /1/search response.
type searchResult struct {
	Boards []Board `json:"boards"`
}

// SearchBoards runs a fuzzy name search restricted to boards.
func (c *Client) SearchBoards(ctx context.Context, query string) ([]Board, error) {
	var result searchResult
	res, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"query":        query,
			"modelTypes":   "boards",
			"boards_limit": fmt.Sprintf("%d", searchBoardsLimit),
			"board_fields": "name,url,shortUrl,closed",
		}).
		SetResult(&result).
		Get("/1/search")
	if err != nil {
		return nil, fmt.Errorf("trello: search boards %q: %w", query, err)
	}
	if res.IsError() {
		return nil, apiError(fmt.Sprintf("search boards %q", query), res)
	}
	ctxlog.FromContext(ctx).Debug("Board search finished.", "query", query, "matches", len(result.Boards))
	return result.Boards, nil
}

// BoardLists returns the open lists on a board in the order Trello stores
// them. Callers that care about ordering sort by Pos themselves.
func (c *Client) BoardLists(ctx context.Context, boardID string) ([]List, error) {
	var lists []List
	res, err := c.request(ctx).
		SetQueryParam("filter", "open").
		SetResult(&lists).
		Get("/1/boards/" + boardID + "/lists")
	if err != nil {
		return nil, fmt.Errorf("trello: lists on board %s: %w", boardID, err)
	}
	if res.IsError() {
		return nil, apiError(fmt.Sprintf("lists on board %s", boardID), res)
	}
	return lists, nil
}

// BoardLabels returns every label defined on a board.
func (c *Client) BoardLabels(ctx context.Context, boardID string) ([]Label, error) {
	var labels []Label
	res, err := c.request(ctx).
		SetResult(&labels).
		Get("/1/boards/" + boardID + "/labels")
	if err != nil {
		return nil, fmt.Errorf("trello: labels on board %s: %w", boardID, err)
	}
	if res.IsError() {
		return nil, apiError(fmt.Sprintf("labels on board %s", boardID), res)
	}
	return labels, nil
}

// BoardMembers returns every member of a board.
func (c *Client) BoardMembers(ctx context.Context, boardID string) ([]Member, error) {
	var members []Member
	res, err := c.request(ctx).
		SetResult(&members).
		Get("/1/boards/" + boardID + "/members")
	if err != nil {
		return nil, fmt.Errorf("trello: members of board %s: %w", boardID, err)
	}
	if res.IsError() {
		return nil, apiError(fmt.Sprintf("members of board %s", boardID), res)
	}
	return members, nil
}

// ListCards returns the open cards on a list.
func (c *Client) ListCards(ctx context.Context, listID string) ([]Card, error) {
	var cards []Card
	res, err := c.request(ctx).
		SetResult(&cards).
		Get("/1/lists/" + listID + "/cards")
	if err != nil {
		return nil, fmt.Errorf("trello: cards on list %s: %w", listID, err)
	}
	if res.IsError() {
		return nil, apiError(fmt.Sprintf("cards on list %s", listID), res)
	}
	return cards, nil
}

// CreateList appends a new list at the bottom of the given board.
func (c *Client) CreateList(ctx context.Context, boardID, name string) (*List, error) {
	var list List
	res, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"idBoard": boardID,
			"name":    name,
			"pos":     "bottom",
		}).
		SetResult(&list).
		Post("/1/lists")
	if err != nil {
		return nil, fmt.Errorf("trello: create list %q on board %s: %w", name, boardID, err)
	}
	if res.IsError() {
		return nil, apiError(fmt.Sprintf("create list %q on board %s", name, boardID), res)
	}
	ctxlog.FromContext(ctx).Debug("List created.", "board", boardID, "list", list.ID, "name", name)
	return &list, nil
}

// CopyCard copies a source card to the bottom of the destination list,
// keeping checklists, attachments, comments and due dates from the source.
// Labels and members do not survive a cross-board copy on their own, so the
// caller passes the already-reconciled destination label and member ids.
func (c *Client) CopyCard(ctx context.Context, sourceCardID, destListID string, labelIDs, memberIDs []string) (*Card, error) {
	params := map[string]string{
		"idList":         destListID,
		"idCardSource":   sourceCardID,
		"pos":            "bottom",
		"keepFromSource": "attachments,checklists,comments,due,start,stickers",
	}
	if len(labelIDs) > 0 {
		params["idLabels"] = strings.Join(labelIDs, ",")
	}
	if len(memberIDs) > 0 {
		params["idMembers"] = strings.Join(memberIDs, ",")
	}

	var card Card
	res, err := c.request(ctx).
		SetQueryParams(params).
		SetResult(&card).
		Post("/1/cards")
	if err != nil {
		return nil, fmt.Errorf("trello: copy card %s to list %s: %w", sourceCardID, destListID, err)
	}
	if res.IsError() {
		return nil, apiError(fmt.Sprintf("copy card %s to list %s", sourceCardID, destListID), res)
	}
	return &card, nil
}
