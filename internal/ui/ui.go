package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/nowplaying/internal/assets"
	"github.com/desertthunder/nowplaying/internal/formatter"
	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/playback"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/desertthunder/nowplaying/internal/tasks"
	"github.com/lucasb-eyer/go-colorful"
)

// barCells is the progress bar length in terminal cells.
const barCells = 40

// SnapshotSource is the part of [tasks.Poller] the view depends on.
type SnapshotSource interface {
	Snapshot() *models.Snapshot
	Toggle()
	Paused() bool
}

// ModelOpts configures [NewModel].
type ModelOpts struct {
	Poller        SnapshotSource
	Cache         *assets.Cache
	Source        shared.ConfigSource
	Width         float64                     // Visualiser width the estimator works in; defaults to 500
	FrameInterval time.Duration               // Defaults to 1/30s
	Updates       <-chan tasks.ProgressUpdate // Optional poller status events
	Now           func() time.Time
}

// Model is the now-playing view.
type Model struct {
	ctx       context.Context
	poller    SnapshotSource
	cache     *assets.Cache
	source    shared.ConfigSource
	estimator *playback.Estimator
	frame     time.Duration
	updates   <-chan tasks.ProgressUpdate
	now       func() time.Time
	lastFrame time.Time

	// composite of the current cover and the paused overlay, rebuilt when the cover changes
	pausedFor *assets.Asset
	pausedArt image.Image

	status tasks.ProgressUpdate
	width  int
	height int
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	if opts.Width <= 0 {
		opts.Width = 500
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = time.Second / 30
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Model{
		ctx:       ctx,
		poller:    opts.Poller,
		cache:     opts.Cache,
		source:    opts.Source,
		estimator: playback.NewEstimator(opts.Width),
		frame:     opts.FrameInterval,
		updates:   opts.Updates,
		now:       opts.Now,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts the frame clock and, when configured, the status listener.
func (m *Model) Init() tea.Cmd {
	m.lastFrame = m.now()
	return tea.Batch(m.tick(), m.waitForUpdate())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.pause):
			m.poller.Toggle()
		}
		return m, nil

	case Msg:
		switch msg.kind {
		case MsgFrame:
			m.advance(msg.data.(time.Time))
			return m, m.tick()
		case MsgProgressUpdate:
			m.status = msg.data.(tasks.ProgressUpdate)
			return m, m.waitForUpdate()
		case MsgUpdatesClosed:
			m.updates = nil
		}
	}
	return m, nil
}

// advance folds the time since the previous frame into the estimate.
func (m *Model) advance(now time.Time) {
	dt := now.Sub(m.lastFrame)
	m.lastFrame = now
	m.estimator.Update(m.poller.Snapshot(), dt)
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) waitForUpdate() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update, ok := <-m.updates:
			if !ok {
				return updatesClosedMsg()
			}
			return progressUpdateMsg(update)
		case <-m.ctx.Done():
			return updatesClosedMsg()
		}
	}
}

// View renders the cover, track details, progress bar and help.
func (m *Model) View() string {
	snap := m.poller.Snapshot()

	var art, details string
	if snap == nil {
		art = renderArt(m.cache.NoTrack().Image)
		details = m.renderText(formatter.NothingPlayingTitle, formatter.NothingPlayingSubtitle)
	} else {
		art = renderArt(m.cover(snap))
		details = lipgloss.JoinVertical(lipgloss.Left,
			m.renderText(snap.TrackName, snap.ArtistLine()),
			"",
			m.renderBar(),
			styles.subtitle.Render(fmt.Sprintf("%s / %s",
				shared.FormatDuration(m.estimator.Position()), shared.FormatDuration(snap.Duration()))),
		)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, art, lipgloss.NewStyle().MarginLeft(2).Render(details))
	return fmt.Sprintf("%s\n\n%s\n%s", body, m.renderStatus(), m.help.ShortHelpView(m.keys.ShortHelp()))
}

// cover returns the image to draw for snap: the resolved cover, with the paused overlay while playback is paused.
func (m *Model) cover(snap *models.Snapshot) image.Image {
	asset := m.cache.Resolve(snap.AlbumArtURL)
	if !asset.Loaded {
		return nil
	}
	if snap.IsPlaying {
		return asset.Image
	}
	if m.pausedFor != asset {
		m.pausedFor = asset
		m.pausedArt = assets.Compose(asset.Image, m.cache.Paused().Image)
	}
	return m.pausedArt
}

func (m *Model) renderText(title, subtitle string) string {
	return lipgloss.JoinVertical(lipgloss.Left, styles.title.Render(title), styles.subtitle.Render(subtitle))
}

// renderBar draws the estimated progress as a gradient that spans the whole bar, so the visible colours shift
// as the bar fills.
func (m *Model) renderBar() string {
	colors := m.gradientColors()
	filled := int(math.Round(m.estimator.Fraction() * barCells))

	var sb strings.Builder
	for i := range barCells {
		if i >= filled {
			sb.WriteString(styles.help.Render("─"))
			continue
		}
		c := Gradient(colors, float64(i)/float64(barCells-1))
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("█"))
	}
	return sb.String()
}

func (m *Model) gradientColors() []colorful.Color {
	colors := make([]colorful.Color, len(shared.GradientOptions))
	for i, opt := range shared.GradientOptions {
		colors[i] = m.source.GetColorOption(opt)
	}
	return colors
}

func (m *Model) renderStatus() string {
	if m.poller.Paused() {
		return styles.warn.Render("Polling paused")
	}
	switch m.status.Phase {
	case tasks.Cleared:
		if m.status.Err != nil && !isNothingPlaying(m.status.Err) {
			return styles.err.Render(m.status.Err.Error())
		}
	case tasks.Skipped:
		return styles.help.Render(m.status.Message)
	}
	return ""
}

func isNothingPlaying(err error) bool {
	return errors.Is(err, shared.ErrNothingPlaying)
}
