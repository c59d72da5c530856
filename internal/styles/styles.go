package styles

import "github.com/charmbracelet/lipgloss"

// Color palette - default dark theme. ApplyTheme swaps these and rebuilds
// every derived style.
var (
	// Primary colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#3B82F6") // Blue
	Accent    = lipgloss.Color("#F59E0B") // Amber

	// Status colors
	Success = lipgloss.Color("#10B981") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Error   = lipgloss.Color("#EF4444") // Red
	Info    = lipgloss.Color("#3B82F6") // Blue

	// Text colors
	TextPrimary   = lipgloss.Color("#F9FAFB")
	TextSecondary = lipgloss.Color("#9CA3AF")
	TextMuted     = lipgloss.Color("#6B7280")
	TextSubtle    = lipgloss.Color("#4B5563")

	// Background colors
	BgPrimary   = lipgloss.Color("#111827")
	BgSecondary = lipgloss.Color("#1F2937")
	BgTertiary  = lipgloss.Color("#374151")

	// Border colors
	BorderNormal = lipgloss.Color("#374151")
	BorderActive = lipgloss.Color("#7C3AED")

	LinkColor             = lipgloss.Color("#60A5FA")
	ToastSuccessTextColor = lipgloss.Color("#000000")
	ToastErrorTextColor   = lipgloss.Color("#FFFFFF")

	ButtonDangerFg        = lipgloss.Color("#FCA5A5")
	ButtonDangerBg        = lipgloss.Color("#7F1D1D")
	ButtonDangerFocusedFg = lipgloss.Color("#FFFFFF")
	ButtonDangerFocusedBg = lipgloss.Color("#DC2626")

	// Third-party theme names
	CurrentSyntaxTheme   = "monokai"
	CurrentMarkdownTheme = "dark"
)

// Panel styles
var (
	PanelActive   lipgloss.Style
	PanelInactive lipgloss.Style
	PanelHeader   lipgloss.Style
)

// Text styles
var (
	Title   lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Subtle  lipgloss.Style
	Link    lipgloss.Style
	KeyHint lipgloss.Style
)

// Document content styles
var (
	Heading1   lipgloss.Style
	Heading2   lipgloss.Style
	Heading3   lipgloss.Style
	BoldText   lipgloss.Style
	ItalicText lipgloss.Style
	Blockquote lipgloss.Style
	ListBullet lipgloss.Style

	// Embedded block card, with a dimmed variant while mid-drag
	EmbedCard         lipgloss.Style
	EmbedCardDragging lipgloss.Style

	// Caret marker inside the editable surface
	Caret lipgloss.Style

	// Active formats in the toolbar line
	FormatActive   lipgloss.Style
	FormatInactive lipgloss.Style
)

// Toast styles for status messages
var (
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
)

// List item styles
var (
	ListItemNormal   lipgloss.Style
	ListItemSelected lipgloss.Style
	ListItemDeleted  lipgloss.Style
	ListCursor       lipgloss.Style
)

// Footer and header
var (
	Footer lipgloss.Style
	Header lipgloss.Style
)

// Modal styles
var (
	ModalBox   lipgloss.Style
	ModalTitle lipgloss.Style
)

// Button styles
var (
	Button              lipgloss.Style
	ButtonFocused       lipgloss.Style
	ButtonDanger        lipgloss.Style
	ButtonDangerFocused lipgloss.Style
)

func init() {
	rebuildStyles()
}

// rebuildStyles derives every style from the current palette.
func rebuildStyles() {
	PanelActive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderActive).
		Padding(0, 1)

	PanelInactive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderNormal).
		Padding(0, 1)

	PanelHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		MarginBottom(1)

	Title = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	Body = lipgloss.NewStyle().Foreground(TextPrimary)
	Muted = lipgloss.NewStyle().Foreground(TextMuted)
	Subtle = lipgloss.NewStyle().Foreground(TextSubtle)
	Link = lipgloss.NewStyle().Foreground(LinkColor).Underline(true)
	KeyHint = lipgloss.NewStyle().Foreground(TextMuted).Background(BgTertiary).Padding(0, 1)

	Heading1 = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Heading2 = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	Heading3 = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)
	BoldText = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)
	ItalicText = lipgloss.NewStyle().Foreground(TextPrimary).Italic(true)
	Blockquote = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	ListBullet = lipgloss.NewStyle().Foreground(Primary)

	EmbedCard = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Secondary).
		Foreground(TextSecondary).
		Padding(0, 1)

	EmbedCardDragging = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(TextSubtle).
		Foreground(TextSubtle).
		Padding(0, 1)

	Caret = lipgloss.NewStyle().Foreground(BgPrimary).Background(TextPrimary)

	FormatActive = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Primary).
		Padding(0, 1).
		Bold(true)

	FormatInactive = lipgloss.NewStyle().Foreground(TextMuted).Padding(0, 1)

	ToastSuccess = lipgloss.NewStyle().
		Background(Success).
		Foreground(ToastSuccessTextColor).
		Bold(true).
		Padding(0, 1)

	ToastError = lipgloss.NewStyle().
		Background(Error).
		Foreground(ToastErrorTextColor).
		Bold(true).
		Padding(0, 1)

	ListItemNormal = lipgloss.NewStyle().Foreground(TextPrimary)
	ListItemSelected = lipgloss.NewStyle().Foreground(TextPrimary).Background(BgTertiary)
	ListItemDeleted = lipgloss.NewStyle().Foreground(TextSubtle).Strikethrough(true)
	ListCursor = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	Footer = lipgloss.NewStyle().Foreground(TextMuted).Background(BgSecondary)
	Header = lipgloss.NewStyle().Background(BgSecondary)

	ModalBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Background(BgSecondary).
		Padding(1, 2)

	ModalTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true).
		MarginBottom(1)

	Button = lipgloss.NewStyle().Foreground(TextSecondary).Background(BgTertiary).Padding(0, 2)
	ButtonFocused = lipgloss.NewStyle().Foreground(TextPrimary).Background(Primary).Padding(0, 2).Bold(true)
	ButtonDanger = lipgloss.NewStyle().Foreground(ButtonDangerFg).Background(ButtonDangerBg).Padding(0, 2)
	ButtonDangerFocused = lipgloss.NewStyle().Foreground(ButtonDangerFocusedFg).Background(ButtonDangerFocusedBg).Padding(0, 2).Bold(true)
}
