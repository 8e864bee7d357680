// Package offers is the rider-facing screen for one pending ride: the list of
// competing driver offers with sort/accept/decline, plus ride cancellation.
//
// Decline is local-only. The backend exposes no decline endpoint, so a
// declined offer is removed from the rendered list and reappears on the next
// poll. That is the documented behavior, not a bug.
package offers

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/ride-console/internal/models"
	"github.com/example/ride-console/internal/ui"
)

// API is the slice of the backend client this screen mutates through.
type API interface {
	SelectOffer(ctx context.Context, rideID, offerID string) (string, error)
	CancelRide(ctx context.Context, rideID string) error
}

// SortKey selects the client-side offer ordering. Not persisted.
type SortKey int

const (
	SortByPrice  SortKey = iota // ascending
	SortByRating                // descending
)

// Messages delivered from outside the Bubble Tea loop.
type (
	// OffersMsg replaces the offer snapshot. Last poll wins, which also
	// resurrects locally declined offers.
	OffersMsg struct{ Offers []models.Offer }
	// PollErrMsg reports a failed offer-list poll.
	PollErrMsg struct{ Err error }
)

type acceptedMsg struct{ pin string }

type cancelledMsg struct{}

type mutationErrMsg struct{ err error }

// Model holds the screen state for a single ride id.
type Model struct {
	api    API
	ctx    context.Context
	rideID string

	refreshOffers func() // invalidates the offer list
	refreshRides  func() // invalidates the rider's ride list

	offers  []models.Offer
	cursor  int
	sortKey SortKey

	pin    string // set once an offer was accepted; terminal screen
	closed bool   // ride cancelled

	notice string
}

func New(ctx context.Context, api API, rideID string, refreshOffers, refreshRides func()) Model {
	if refreshOffers == nil {
		refreshOffers = func() {}
	}
	if refreshRides == nil {
		refreshRides = func() {}
	}
	return Model{
		api:           api,
		ctx:           ctx,
		rideID:        rideID,
		refreshOffers: refreshOffers,
		refreshRides:  refreshRides,
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Offers exposes the currently rendered list, mainly for tests.
func (m Model) Offers() []models.Offer { return m.offers }

// PIN returns the boarding PIN after a successful accept.
func (m Model) PIN() string { return m.pin }

// Notice returns the current transient notice text.
func (m Model) Notice() string { return m.notice }

// Sort returns the active sort key.
func (m Model) Sort() SortKey { return m.sortKey }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case OffersMsg:
		m.offers = append([]models.Offer(nil), msg.Offers...)
		m.applySort()
		if m.cursor >= len(m.offers) {
			m.cursor = max(0, len(m.offers)-1)
		}
		return m, nil

	case PollErrMsg:
		m.notice = "could not refresh offers, will retry"
		return m, nil

	case acceptedMsg:
		m.pin = msg.pin
		m.refreshOffers()
		m.refreshRides()
		return m, nil

	case cancelledMsg:
		m.closed = true
		m.refreshRides()
		return m, tea.Quit

	case mutationErrMsg:
		m.notice = "request failed, try again"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// once the PIN is on screen the only way out is closing
	if m.pin != "" {
		switch msg.String() {
		case "ctrl+c", "q", "enter", "esc":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.offers)-1 {
			m.cursor++
		}
	case "p":
		m.sortKey = SortByPrice
		m.applySort()
	case "r":
		m.sortKey = SortByRating
		m.applySort()
	case "enter", "a":
		return m.accept()
	case "d":
		m.decline()
	case "c":
		return m.cancelRide()
	}
	return m, nil
}

func (m Model) accept() (tea.Model, tea.Cmd) {
	o, ok := m.selected()
	if !ok {
		return m, nil
	}
	rideID, offerID := m.rideID, o.ID
	return m, func() tea.Msg {
		pin, err := m.api.SelectOffer(m.ctx, rideID, offerID)
		if err != nil {
			return mutationErrMsg{err: err}
		}
		return acceptedMsg{pin: pin}
	}
}

// decline drops the offer from the rendered list only; no request is issued
// and the offer comes back with the next poll.
func (m *Model) decline() {
	if m.cursor < 0 || m.cursor >= len(m.offers) {
		return
	}
	m.offers = append(m.offers[:m.cursor], m.offers[m.cursor+1:]...)
	if m.cursor >= len(m.offers) {
		m.cursor = max(0, len(m.offers)-1)
	}
}

// cancelRide deletes the ride and closes the screen once the call resolves,
// independent of the offer list contents.
func (m Model) cancelRide() (tea.Model, tea.Cmd) {
	rideID := m.rideID
	return m, func() tea.Msg {
		if err := m.api.CancelRide(m.ctx, rideID); err != nil {
			return mutationErrMsg{err: err}
		}
		return cancelledMsg{}
	}
}

func (m *Model) applySort() {
	switch m.sortKey {
	case SortByRating:
		models.SortOffersByRating(m.offers)
	default:
		models.SortOffersByPrice(m.offers)
	}
}

func (m Model) selected() (models.Offer, bool) {
	if m.cursor < 0 || m.cursor >= len(m.offers) {
		return models.Offer{}, false
	}
	return m.offers[m.cursor], true
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("Offers for ride " + m.rideID))
	b.WriteString("\n")

	if m.pin != "" {
		b.WriteString("Offer accepted. Share this PIN with your driver at pickup:\n\n")
		b.WriteString(ui.PINStyle.Render(m.pin))
		b.WriteString("\n\n" + ui.FaintStyle.Render("press enter to close"))
		return b.String()
	}

	sortLabel := "price (asc)"
	if m.sortKey == SortByRating {
		sortLabel = "rating (desc)"
	}
	b.WriteString(ui.FaintStyle.Render("sorted by "+sortLabel) + "\n\n")

	if len(m.offers) == 0 {
		b.WriteString(ui.FaintStyle.Render("No offers yet. Drivers are looking at your request..."))
		b.WriteString("\n")
	}

	for i, o := range m.offers {
		body := fmt.Sprintf("%s  %.1f★  $%.2f\n%d %s %s, %s",
			o.Driver.Name, o.Driver.Rating, o.Price,
			o.Vehicle.Year, o.Vehicle.Brand, o.Vehicle.Model, o.Vehicle.Color,
		)
		if i == m.cursor {
			b.WriteString(ui.SelectedCardStyle.Render(body))
		} else {
			b.WriteString(ui.CardStyle.Render(body))
		}
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n" + ui.ErrorStyle.Render(m.notice) + "\n")
	}

	b.WriteString("\n" + ui.FaintStyle.Render("a: accept  d: decline  p/r: sort  c: cancel ride  q: quit"))
	return b.String()
}
