// Package dashboard is the driver-facing screen: one card per visible ride,
// a price input for REQUESTED rides and a PIN modal for ACCEPTED ones.
package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/ride-console/internal/models"
	"github.com/example/ride-console/internal/ui"
)

// API is the slice of the backend client the dashboard mutates through.
type API interface {
	CreateOffer(ctx context.Context, rideID string, price float64) (models.Offer, error)
	ValidatePIN(ctx context.Context, rideID, pin string) (bool, error)
}

// Messages delivered from outside the Bubble Tea loop (poller, listener).
type (
	// RidesMsg replaces the ride snapshot. Last poll wins.
	RidesMsg struct{ Rides []models.Ride }
	// PollErrMsg reports a failed ride-list poll.
	PollErrMsg struct{ Err error }
)

type offerCreatedMsg struct{ rideID string }

type pinResultMsg struct {
	rideID string
	valid  bool
}

type mutationErrMsg struct{ err error }

// Model holds the dashboard's transient state. Price buffers, the open PIN
// modal and notices are ephemeral and reset on submit or close; the ride list
// itself is an eventually-consistent snapshot owned by the poller.
type Model struct {
	api     API
	ctx     context.Context
	refresh func() // invalidates the ride list

	rides  []models.Ride
	cursor int

	priceInput map[string]string // per-ride price buffer

	pinRide  string // ride id with the PIN modal open, "" when closed
	pinInput string

	notice   string
	noticeOK bool
}

func New(ctx context.Context, api API, refresh func()) Model {
	if refresh == nil {
		refresh = func() {}
	}
	return Model{
		api:        api,
		ctx:        ctx,
		refresh:    refresh,
		priceInput: make(map[string]string),
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Rides exposes the current snapshot, mainly for tests.
func (m Model) Rides() []models.Ride { return m.rides }

// PinModalOpen reports whether the PIN modal is showing.
func (m Model) PinModalOpen() bool { return m.pinRide != "" }

// PriceBuffer returns the price input buffer for a ride.
func (m Model) PriceBuffer(rideID string) string { return m.priceInput[rideID] }

// Notice returns the current transient notice text.
func (m Model) Notice() string { return m.notice }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RidesMsg:
		m.rides = msg.Rides
		if m.cursor >= len(m.rides) {
			m.cursor = max(0, len(m.rides)-1)
		}
		return m, nil

	case PollErrMsg:
		m.setError("could not refresh rides, will retry")
		return m, nil

	case offerCreatedMsg:
		delete(m.priceInput, msg.rideID)
		m.setOK("offer submitted")
		m.refresh()
		return m, nil

	case pinResultMsg:
		if msg.valid {
			m.pinRide = ""
			m.pinInput = ""
			m.setOK("PIN validated")
			m.refresh()
		} else {
			// keep the modal open so the driver can retry
			m.pinInput = ""
			m.setError("PIN did not match")
		}
		return m, nil

	case mutationErrMsg:
		m.setError("request failed, try again")
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.pinRide != "" {
		return m.handleModalKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rides)-1 {
			m.cursor++
		}
	case "backspace":
		if r, ok := m.selected(); ok && r.Status() == models.StatusRequested {
			buf := m.priceInput[r.ID]
			if buf != "" {
				m.priceInput[r.ID] = buf[:len(buf)-1]
			}
		}
	case "enter":
		return m.submitSelected()
	default:
		if r, ok := m.selected(); ok && r.Status() == models.StatusRequested && isPriceRune(msg.String()) {
			m.priceInput[r.ID] += msg.String()
			m.notice = ""
		}
	}
	return m, nil
}

func (m Model) handleModalKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.pinRide = ""
		m.pinInput = ""
		m.notice = ""
	case "backspace":
		if m.pinInput != "" {
			m.pinInput = m.pinInput[:len(m.pinInput)-1]
		}
	case "enter":
		return m.submitPIN()
	default:
		if len(msg.String()) == 1 {
			m.pinInput += msg.String()
		}
	}
	return m, nil
}

// submitSelected dispatches the status-dependent action for the ride under
// the cursor.
func (m Model) submitSelected() (Model, tea.Cmd) {
	r, ok := m.selected()
	if !ok {
		return m, nil
	}
	switch r.Status() {
	case models.StatusRequested:
		return m.submitOffer(r)
	case models.StatusAccepted:
		m.pinRide = r.ID
		m.pinInput = ""
		m.notice = ""
		return m, nil
	default:
		return m, nil
	}
}

// submitOffer validates the price buffer locally; bad input never reaches
// the network.
func (m Model) submitOffer(r models.Ride) (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.priceInput[r.ID])
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price <= 0 {
		m.setError("price must be a positive number")
		return m, nil
	}
	rideID := r.ID
	return m, func() tea.Msg {
		if _, err := m.api.CreateOffer(m.ctx, rideID, price); err != nil {
			return mutationErrMsg{err: err}
		}
		return offerCreatedMsg{rideID: rideID}
	}
}

func (m Model) submitPIN() (Model, tea.Cmd) {
	pin := strings.TrimSpace(m.pinInput)
	if pin == "" {
		m.setError("enter the rider's PIN")
		return m, nil
	}
	rideID := m.pinRide
	return m, func() tea.Msg {
		valid, err := m.api.ValidatePIN(m.ctx, rideID, pin)
		if err != nil {
			return mutationErrMsg{err: err}
		}
		return pinResultMsg{rideID: rideID, valid: valid}
	}
}

func (m Model) selected() (models.Ride, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rides) {
		return models.Ride{}, false
	}
	return m.rides[m.cursor], true
}

func (m *Model) setError(s string) { m.notice, m.noticeOK = s, false }
func (m *Model) setOK(s string)    { m.notice, m.noticeOK = s, true }

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("Driver dashboard"))
	b.WriteString("\n")

	if len(m.rides) == 0 {
		b.WriteString(ui.FaintStyle.Render("No rides yet. Waiting for the next poll..."))
		b.WriteString("\n")
	}

	for i, r := range m.rides {
		b.WriteString(m.renderCard(i, r))
		b.WriteString("\n")
	}

	if m.pinRide != "" {
		b.WriteString("\n")
		b.WriteString(ui.CardStyle.Render(fmt.Sprintf("Validate boarding PIN for ride %s\nPIN: %s_\n(enter to submit, esc to close)", m.pinRide, m.pinInput)))
		b.WriteString("\n")
	}

	if m.notice != "" {
		style := ui.ErrorStyle
		if m.noticeOK {
			style = ui.NoticeStyle
		}
		b.WriteString("\n" + style.Render(m.notice) + "\n")
	}

	b.WriteString("\n" + ui.FaintStyle.Render("up/down: select  enter: offer/validate  q: quit"))
	return b.String()
}

func (m Model) renderCard(i int, r models.Ride) string {
	status := r.Status()
	var action string
	switch status {
	case models.StatusRequested:
		action = fmt.Sprintf("offer price: %s_", m.priceInput[r.ID])
	case models.StatusAccepted:
		action = "press enter to validate PIN"
	default:
		action = "no action"
	}

	body := fmt.Sprintf("%s  %s\n%s -> %s\nrider: %s  scheduled: %s\n%s",
		r.ID,
		ui.StatusStyle(status.String()).Render(status.String()),
		r.Pickup, r.Destination,
		r.RiderName, r.ScheduledAt.Format("Jan 2 15:04"),
		action,
	)
	if i == m.cursor {
		return ui.SelectedCardStyle.Render(body)
	}
	return ui.CardStyle.Render(body)
}

func isPriceRune(s string) bool {
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return (c >= '0' && c <= '9') || c == '.'
}
